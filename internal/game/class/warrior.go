package class

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
)

const (
	endureDuration  = 2
	endureMaxStacks = 3
	blockPerStack   = 5
	bleedDuration   = 3
)

var (
	endureMitigation = [3]int{33, 66, 100}
	endureBoost      = [3]int{15, 25, 35}
	endureCooldown   = [3]int{5, 4, 3}
	bleedScale       = [3]int{1, 3, 9}
)

// Warrior blocks with flat defense and fights through Endure.
//
// While Endure is active the warrior's heavy attack is boosted, every incoming
// hit is reduced by a level-scaled percentage after Block, and each strike
// bleeds the opponent.
type Warrior struct {
	EndureTurns  int `json:"endure_turns"`
	EndureStacks int `json:"endure_stacks"`
}

// Cooldowns registers endure.
func (w *Warrior) Cooldowns() []combat.Cooldown {
	return []combat.Cooldown{combat.CooldownEndure}
}

// EliteCooldown is always endure.
func (w *Warrior) EliteCooldown(*combat.Combatant) combat.Cooldown {
	return combat.CooldownEndure
}

// Reset drops Endure and its stacks.
func (w *Warrior) Reset(*combat.Combatant) {
	w.EndureTurns = 0
	w.EndureStacks = 0
}

// EndureActive reports whether the Endure buff is running.
func (w *Warrior) EndureActive() bool { return w.EndureTurns > 0 }

// LightAttack is a one-handed strike that bleeds while Endure is active.
func (w *Warrior) LightAttack(c *combat.Combatant, _ combat.Context) combat.Strike {
	return combat.Strike{
		Hits:     []int{c.Attack()},
		Verb:     "strikes with a one-handed weapon",
		Statuses: w.bleed(c),
	}
}

// HeavyAttack doubles attack, boosted further by Endure.
func (w *Warrior) HeavyAttack(c *combat.Combatant, _ combat.Context) combat.Strike {
	dmg := 2 * c.Attack()
	s := combat.Strike{Verb: "delivers a two-handed strike", Statuses: w.bleed(c)}
	if w.EndureActive() {
		boost := combat.Pct(dmg, endureBoost[tier(c.Level)])
		dmg += boost
		s.Notes = append(s.Notes, fmt.Sprintf("endure adds %d", boost))
	}
	s.Hits = []int{dmg}
	return s
}

// Defend announces the block value.
func (w *Warrior) Defend(c *combat.Combatant) string {
	return fmt.Sprintf("%s raises a shield to block (%d defense)", c.Name, w.blockValue(c))
}

// Elite activates Endure: two turns, one more stack up to three, and a bleed
// on the opponent.
func (w *Warrior) Elite(c *combat.Combatant, _ combat.Context) combat.ActionResult {
	t := tier(c.Level)
	c.Cooldowns().Set(combat.CooldownEndure, endureCooldown[t])
	w.EndureTurns = endureDuration
	w.EndureStacks = min(endureMaxStacks, w.EndureStacks+1)
	return combat.ActionResult{
		Action:   combat.Action{Name: "endure"},
		Statuses: w.bleed(c),
		Message: fmt.Sprintf("%s endures: %d%% damage reduction, +%d%% heavy damage (%d stacks)",
			c.Name, endureMitigation[t], endureBoost[t], w.EndureStacks),
	}
}

// Mitigate applies Block while defending, then Endure's reduction whenever
// Endure is active.
func (w *Warrior) Mitigate(c *combat.Combatant, raw int, _ combat.Context) combat.Mitigation {
	m := combat.Mitigation{Final: raw}
	if raw <= 0 {
		return m
	}
	if c.IsDefending() {
		m.Final = max(1, raw-w.blockValue(c))
		if blocked := raw - m.Final; blocked > 0 {
			m.Notes = append(m.Notes, fmt.Sprintf("block stops %d", blocked))
		}
	}
	if w.EndureActive() {
		absorbed := combat.Pct(m.Final, endureMitigation[tier(c.Level)])
		m.Final -= absorbed
		if m.Final == 0 {
			m.Notes = append(m.Notes, "endure grants full immunity")
		} else if absorbed > 0 {
			m.Notes = append(m.Notes, fmt.Sprintf("endure absorbs %d", absorbed))
		}
	}
	return m
}

// StartTurn counts Endure down and clears its stacks on expiry.
func (w *Warrior) StartTurn(*combat.Combatant, bool) []string {
	if w.EndureTurns == 0 {
		return nil
	}
	w.EndureTurns--
	if w.EndureTurns == 0 {
		w.EndureStacks = 0
		return []string{"endure fades"}
	}
	return nil
}

// OnDamaged has no warrior reaction.
func (w *Warrior) OnDamaged(*combat.Combatant) []string { return nil }

func (w *Warrior) blockValue(c *combat.Combatant) int {
	return c.TotalDefense() + blockPerStack*w.EndureStacks
}

func (w *Warrior) bleed(c *combat.Combatant) []condition.Application {
	if !w.EndureActive() {
		return nil
	}
	return []condition.Application{{
		Kind:      condition.Bleed,
		Duration:  bleedDuration,
		Source:    string(combat.Warrior),
		Magnitude: max(1, c.BaseAttack/6) * bleedScale[tier(c.Level)],
	}}
}
