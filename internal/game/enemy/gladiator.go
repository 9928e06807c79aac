package enemy

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
)

const (
	ironGuardTurns       = 2
	ironGuardPct         = 80
	ironGuardReflectPct  = 30
	maxEnduranceStacks   = 5
	enduranceAttackPct   = 10
	enduranceResistPct   = 5
	battleFuryTurns      = 3
	battleFuryPct        = 120
	shoutInitiative      = 5
	shoutIntimidateTurns = 2
)

// GladiatorWarrior is the arena champion: a boss that guards, builds
// endurance, and closes fights with an execution strike.
type GladiatorWarrior struct {
	base
	EnduranceStacks int `json:"endurance_stacks"`
}

func (g *GladiatorWarrior) Reset(*combat.Combatant) { g.EnduranceStacks = 0 }

// Power returns the gladiator's attack including endurance stacks and battle fury.
func (g *GladiatorWarrior) Power(c *combat.Combatant) int {
	p := c.Attack() + combat.Pct(c.BaseAttack, enduranceAttackPct*g.EnduranceStacks)
	if c.Statuses().Has(condition.BattleFury) {
		p = combat.Pct(p, battleFuryPct)
	}
	return p
}

func (g *GladiatorWarrior) LightAttack(c *combat.Combatant, ctx combat.Context) combat.Strike {
	return combat.Strike{Hits: []int{g.vary(ctx, g.Power(c))}, Verb: "strikes with practiced precision"}
}

func (g *GladiatorWarrior) HeavyAttack(c *combat.Combatant, ctx combat.Context) combat.Strike {
	return combat.Strike{Hits: []int{g.vary(ctx, 2*g.Power(c))}, Verb: "delivers a crushing overhead blow"}
}

// Mitigate applies the defend guard, then endurance resistance, then Iron
// Guard, which also reflects part of the raw hit.
func (g *GladiatorWarrior) Mitigate(c *combat.Combatant, raw int, _ combat.Context) combat.Mitigation {
	m := g.mitigate(c, raw, 0)
	if raw <= 0 {
		return m
	}
	def := c.TotalDefense()
	if g.EnduranceStacks > 0 {
		if resist := combat.Pct(def, enduranceResistPct*g.EnduranceStacks); resist > 0 {
			before := m.Final
			m.Final = max(1, m.Final-resist)
			m.Notes = append(m.Notes, fmt.Sprintf("endurance resists %d", before-m.Final))
		}
	}
	if c.Statuses().Has(condition.IronGuard) {
		before := m.Final
		m.Final = max(1, m.Final-combat.Pct(def, ironGuardPct))
		m.Reflected = combat.Pct(raw, ironGuardReflectPct)
		m.Notes = append(m.Notes, fmt.Sprintf("iron guard absorbs %d", before-m.Final))
	}
	return m
}

// AbilityReady stops Battle Endurance at its stack limit.
func (g *GladiatorWarrior) AbilityReady(_ *combat.Combatant, id combat.Cooldown) bool {
	if id == combat.CooldownEndurance {
		return g.EnduranceStacks < maxEnduranceStacks
	}
	return true
}

func (g *GladiatorWarrior) UseAbility(c *combat.Combatant, id combat.Cooldown, ctx combat.Context) combat.ActionResult {
	switch id {
	case combat.CooldownIronGuard:
		return combat.ActionResult{
			Message: fmt.Sprintf("%s raises an iron guard", c.Name),
			Notes:   []string{selfApply(c, afflict(condition.IronGuard, ironGuardTurns, c.Archetype, 0))},
		}
	case combat.CooldownEndurance:
		g.EnduranceStacks = min(maxEnduranceStacks, g.EnduranceStacks+1)
		return combat.ActionResult{
			Message: fmt.Sprintf("%s steels for a long fight (%d/%d endurance)", c.Name, g.EnduranceStacks, maxEnduranceStacks),
		}
	case combat.CooldownExecution:
		ratio := 1.0
		if ctx.Target != nil {
			ratio = ctx.Target.HPRatio()
		}
		dmg := int(2 * float64(g.Power(c)) * (1 + (1-ratio)*2))
		return hit(c.Name+" attempts an execution strike", g.vary(ctx, dmg))
	case combat.CooldownWarriorShout:
		c.Initiative += shoutInitiative
		return combat.ActionResult{
			Message:  fmt.Sprintf("%s roars a war cry", c.Name),
			Notes:    []string{selfApply(c, afflict(condition.BattleFury, battleFuryTurns, c.Archetype, 0))},
			Statuses: []condition.Application{afflict(condition.Intimidated, shoutIntimidateTurns, c.Archetype, 0)},
		}
	}
	panic(fmt.Sprintf("enemy: gladiator has no ability %q", id))
}

// Bonus guards against a ready heavy or elite, builds endurance, executes a
// low target, and shouts while fresh.
func (g *GladiatorWarrior) Bonus(_ *combat.Combatant, action combat.Action, ctx ai.Context) int {
	switch action.Ability {
	case combat.CooldownIronGuard:
		if ctx.PlayerHeavyReady || ctx.PlayerEliteReady {
			return 30
		}
	case combat.CooldownEndurance:
		return 25
	case combat.CooldownExecution:
		if !ctx.PlayerLow {
			return 0
		}
		if ctx.Profile == combat.ProfileAggressive {
			return 55
		}
		return 40
	case combat.CooldownWarriorShout:
		if ctx.EnemyHealthy {
			return 20
		}
	}
	return 0
}
