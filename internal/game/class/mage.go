package class

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

const (
	maxCharges     = 3
	chillChance    = 0.2
	chillDuration  = 2
	shockEvery     = 3
	shockBase      = 6
	counterPercent = 60
)

var (
	firestormDamage   = [3]int{72, 144, 288}
	firestormBurn     = [3]int{12, 24, 48}
	firestormDuration = [3]int{2, 3, 4}
	firestormCooldown = [3]int{6, 5, 4}
)

// Mage fights with lightning and ice, evades with Mist Step, and unleashes
// Firestorm as its elite.
//
// Magic power is the mage's base attack. Mist Step charges build on defends
// and successful evasions, decay when the mage does not defend, and pay for
// counter-attacks.
type Mage struct {
	LightAttacks int `json:"light_attacks"`
	Charges      int `json:"charges"`
}

// Cooldowns registers firestorm.
func (m *Mage) Cooldowns() []combat.Cooldown {
	return []combat.Cooldown{combat.CooldownFirestorm}
}

// EliteCooldown is always firestorm.
func (m *Mage) EliteCooldown(*combat.Combatant) combat.Cooldown {
	return combat.CooldownFirestorm
}

// Reset clears the whip counter and mist charges.
func (m *Mage) Reset(*combat.Combatant) {
	m.LightAttacks = 0
	m.Charges = 0
}

// LightAttack is the lightning whip: a chance to chill, and a shock bonus on
// every third use.
func (m *Mage) LightAttack(c *combat.Combatant, ctx combat.Context) combat.Strike {
	m.LightAttacks++
	s := combat.Strike{Hits: []int{c.Attack()}, Verb: "lashes with a lightning whip"}
	if m.LightAttacks%shockEvery == 0 {
		s.Bonus = shockDamage(c.Level)
		s.Statuses = append(s.Statuses, condition.Application{Kind: condition.Shocked, Duration: 1, Source: string(combat.Mage)})
		s.Notes = append(s.Notes, fmt.Sprintf("+%d shock", s.Bonus))
	}
	if dice.Chance(ctx.Src, chillChance) {
		s.Statuses = append(s.Statuses, chill())
		s.Notes = append(s.Notes, "crackling with frost")
	}
	return s
}

// HeavyAttack is ice spikes: double damage plus a fifth, always chilling.
func (m *Mage) HeavyAttack(c *combat.Combatant, _ combat.Context) combat.Strike {
	dmg := 2 * c.Attack()
	dmg += combat.Pct(dmg, 20)
	return combat.Strike{
		Hits:     []int{dmg},
		Verb:     "hurls ice spikes",
		Statuses: []condition.Application{chill()},
	}
}

// Defend gains a mist charge, up to the cap.
func (m *Mage) Defend(c *combat.Combatant) string {
	m.Charges = min(maxCharges, m.Charges+1)
	return fmt.Sprintf("%s dissolves into mist (%d%% evasion, %d charges)", c.Name, int(m.evasion(c)*100), m.Charges)
}

// Elite calls down a firestorm: level-scaled damage plus burn.
func (m *Mage) Elite(c *combat.Combatant, _ combat.Context) combat.ActionResult {
	t := tier(c.Level)
	c.Cooldowns().Set(combat.CooldownFirestorm, firestormCooldown[t])
	return combat.ActionResult{
		Action: combat.Action{Name: "firestorm"},
		Damage: firestormDamage[t],
		Hits:   []int{firestormDamage[t]},
		Statuses: []condition.Application{{
			Kind:      condition.Burn,
			Duration:  firestormDuration[t],
			Source:    string(combat.Mage),
			Magnitude: firestormBurn[t],
		}},
		Message: fmt.Sprintf("%s calls down a firestorm for %d damage", c.Name, firestormDamage[t]),
	}
}

// Mitigate rolls Mist Step while defending. A full evasion gains a charge and
// spends one on a counter-attack for the orchestrator to deliver.
func (m *Mage) Mitigate(c *combat.Combatant, raw int, ctx combat.Context) combat.Mitigation {
	out := combat.Mitigation{Final: raw}
	if raw <= 0 || !c.IsDefending() {
		return out
	}
	if dice.Chance(ctx.Src, m.evasion(c)) {
		out.Final = 0
		out.Evaded = true
		m.Charges = min(maxCharges, m.Charges+1)
		out.Notes = append(out.Notes, fmt.Sprintf("%s evades completely in a swirl of mist", c.Name))
		if m.Charges > 0 {
			m.Charges--
			out.Counter = combat.Pct(c.BaseAttack, counterPercent)
		}
		return out
	}
	reduction := math.Min(0.4, float64(c.BaseAttack)/60)
	out.Final = max(1, int(float64(raw)*(1-reduction)))
	out.Notes = append(out.Notes, fmt.Sprintf("mist step reduces damage by %d%%", int(reduction*100)))
	return out
}

// StartTurn decays one charge unless the mage defended last turn.
func (m *Mage) StartTurn(_ *combat.Combatant, wasDefending bool) []string {
	if m.Charges > 0 && !wasDefending {
		m.Charges--
	}
	return nil
}

// OnDamaged has no mage reaction.
func (m *Mage) OnDamaged(*combat.Combatant) []string { return nil }

func (m *Mage) evasion(c *combat.Combatant) float64 {
	p := 0.25 + float64(c.BaseAttack)/120 + 0.05*float64(m.Charges)
	return math.Min(0.7, p)
}

func shockDamage(level int) int {
	d := shockBase
	if level >= 4 {
		d *= 2
	}
	if level >= 5 {
		d *= 2
	}
	return d
}

func chill() condition.Application {
	return condition.Application{Kind: condition.Chill, Duration: chillDuration, Source: string(combat.Mage)}
}
