package class

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

var (
	stealthDuration  = [3]int{2, 2, 3}
	stealthCooldown  = [3]int{6, 5, 4}
	backstabCooldown = [3]int{4, 3, 3}
	backstabBonus    = [3]int{50, 75, 100}
)

// Rogue strikes twice, dodges, and uses a two-phase Stealth/Backstab elite.
//
// The first elite enters stealth. A second elite while stealthed arms a
// backstab that turns the next light attack into a critical with bonus damage.
// A successful dodge primes expose, so the rogue's next hit is critical too.
type Rogue struct {
	StealthTurns  int  `json:"stealth_turns"`
	BackstabReady bool `json:"backstab_ready"`
}

// Cooldowns registers stealth and backstab.
func (r *Rogue) Cooldowns() []combat.Cooldown {
	return []combat.Cooldown{combat.CooldownStealth, combat.CooldownBackstab}
}

// EliteCooldown is backstab while stealthed, stealth otherwise.
func (r *Rogue) EliteCooldown(*combat.Combatant) combat.Cooldown {
	if r.Stealthed() {
		return combat.CooldownBackstab
	}
	return combat.CooldownStealth
}

// Reset leaves stealth.
func (r *Rogue) Reset(*combat.Combatant) { r.exitStealth() }

// exitStealth ends stealth and drops any armed backstab.
func (r *Rogue) exitStealth() {
	r.StealthTurns = 0
	r.BackstabReady = false
}

// Stealthed reports whether the rogue is hidden.
func (r *Rogue) Stealthed() bool { return r.StealthTurns > 0 }

// Untargetable is true while stealthed.
func (r *Rogue) Untargetable(*combat.Combatant) bool { return r.Stealthed() }

// LightAttack strikes twice. An armed backstab makes it a critical with bonus
// damage and ends stealth; otherwise stealth holds.
func (r *Rogue) LightAttack(c *combat.Combatant, _ combat.Context) combat.Strike {
	hit := c.Attack() / 2
	s := combat.Strike{Hits: []int{hit, hit}, Verb: "strikes with twin daggers"}
	if r.Stealthed() {
		s.Notes = append(s.Notes, "from stealth")
	}
	if r.BackstabReady {
		s.Critical = true
		s.Bonus = combat.Pct(c.Attack(), backstabBonus[tier(c.Level)])
		s.Notes = append(s.Notes, fmt.Sprintf("backstab adds %d", s.Bonus))
		r.exitStealth()
	}
	return s
}

// HeavyAttack is a four-way flurry of equal hits. It breaks stealth.
func (r *Rogue) HeavyAttack(c *combat.Combatant, _ combat.Context) combat.Strike {
	hit := 2 * c.Attack() / 4
	r.exitStealth()
	return combat.Strike{Hits: []int{hit, hit, hit, hit}, Verb: "unleashes a flurry"}
}

// Defend announces the dodge chance.
func (r *Rogue) Defend(c *combat.Combatant) string {
	return fmt.Sprintf("%s prepares to dodge (%d%% chance)", c.Name, int(dodgeChance(c)*100))
}

// Elite enters stealth, or arms a backstab when already stealthed.
func (r *Rogue) Elite(c *combat.Combatant, _ combat.Context) combat.ActionResult {
	t := tier(c.Level)
	if r.Stealthed() {
		c.Cooldowns().Set(combat.CooldownBackstab, backstabCooldown[t])
		r.BackstabReady = true
		return combat.ActionResult{
			Action:  combat.Action{Name: "backstab"},
			Message: fmt.Sprintf("%s readies a backstab from the shadows", c.Name),
		}
	}
	c.Cooldowns().Set(combat.CooldownStealth, stealthCooldown[t])
	r.StealthTurns = stealthDuration[t]
	r.BackstabReady = false
	return combat.ActionResult{
		Action:  combat.Action{Name: "stealth"},
		Message: fmt.Sprintf("%s vanishes into the shadows, untargetable for %d turns", c.Name, r.StealthTurns),
	}
}

// Mitigate rolls a dodge while defending. A clean dodge takes no damage and
// primes expose; a failed dodge still trims damage by up to half.
func (r *Rogue) Mitigate(c *combat.Combatant, raw int, ctx combat.Context) combat.Mitigation {
	m := combat.Mitigation{Final: raw}
	if raw <= 0 || !c.IsDefending() {
		return m
	}
	if dice.Chance(ctx.Src, dodgeChance(c)) {
		m.Final = 0
		m.Evaded = true
		m.Notes = append(m.Notes, fmt.Sprintf("%s dodges completely", c.Name))
		if _, err := c.ApplyStatus(condition.Application{Kind: condition.Expose, Source: string(combat.Rogue)}); err == nil {
			m.Notes = append(m.Notes, "riposte primed")
		}
		return m
	}
	reduction := math.Min(0.5, float64(c.Defense)/30)
	m.Final = max(1, int(float64(raw)*(1-reduction)))
	m.Notes = append(m.Notes, fmt.Sprintf("partial dodge reduces damage by %d%%", int(reduction*100)))
	return m
}

// StartTurn counts stealth down. Expiry drops an unused backstab.
func (r *Rogue) StartTurn(*combat.Combatant, bool) []string {
	if r.StealthTurns == 0 {
		return nil
	}
	r.StealthTurns--
	if r.StealthTurns == 0 {
		r.exitStealth()
		return []string{"emerges from stealth"}
	}
	return nil
}

// OnDamaged has no rogue reaction.
func (r *Rogue) OnDamaged(*combat.Combatant) []string { return nil }

// dodgeChance counts armor; partial dodge uses base defense only.
func dodgeChance(c *combat.Combatant) float64 {
	p := 0.15 + float64(c.TotalDefense())/100 + 0.05*float64(c.Level-1)
	return math.Min(0.6, p)
}
