package enemy

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

const (
	scalesPct          = 40
	tailWhipPct        = 80
	tailWhipSecondHit  = 0.3
	venomSpitPct       = 60
	venomPct           = 25
	venomTurns         = 5
	hardenedTurns      = 4
	crushingBitePct    = 180
	crushingStunTurns  = 1
	berserkRatio       = 0.2
	berserkerAttackPct = 150
)

// GiantLizard is a large beast protected by thick scales.
//
// Its scales absorb a share of every hit; hardening doubles them and the
// berserker rage it enters at 20% HP halves them while raising attack.
type GiantLizard struct {
	base
	Berserk bool `json:"berserk"`
}

func (l *GiantLizard) Reset(*combat.Combatant) { l.Berserk = false }

// Scales returns the armor the lizard's scales currently provide.
func (l *GiantLizard) Scales(c *combat.Combatant) int {
	armor := combat.Pct(c.TotalDefense(), scalesPct)
	if c.Statuses().Has(condition.HardenedScales) {
		armor *= 2
	}
	if l.Berserk {
		armor /= 2
	}
	return armor
}

func (l *GiantLizard) Mitigate(c *combat.Combatant, raw int, _ combat.Context) combat.Mitigation {
	return l.mitigate(c, raw, l.Scales(c))
}

func (l *GiantLizard) OnDamaged(c *combat.Combatant) []string {
	if l.Berserk || c.HPRatio() > berserkRatio {
		return nil
	}
	l.Berserk = true
	c.BaseAttack = combat.Pct(c.BaseAttack, berserkerAttackPct)
	return []string{
		fmt.Sprintf("%s goes berserk, its scales cracking", c.Name),
		selfApply(c, afflict(condition.Berserker, 0, c.Archetype, 0)),
	}
}

// AbilityReady refuses to harden scales that are already hardened.
func (l *GiantLizard) AbilityReady(c *combat.Combatant, id combat.Cooldown) bool {
	if id == combat.CooldownScaleHardening {
		return !c.Statuses().Has(condition.HardenedScales)
	}
	return true
}

func (l *GiantLizard) UseAbility(c *combat.Combatant, id combat.Cooldown, ctx combat.Context) combat.ActionResult {
	atk := c.Attack()
	switch id {
	case combat.CooldownTailWhip:
		hits := []int{l.vary(ctx, combat.Pct(atk, tailWhipPct))}
		if dice.Chance(ctx.Src, tailWhipSecondHit) {
			hits = append(hits, l.vary(ctx, combat.Pct(atk, tailWhipPct)))
		}
		res := hit(c.Name+" whips its tail", hits...)
		if len(hits) > 1 {
			res.Notes = append(res.Notes, "the tail strikes twice")
		}
		return res
	case combat.CooldownVenomSpit:
		res := hit(c.Name+" spits venom", l.vary(ctx, combat.Pct(atk, venomSpitPct)))
		res.Statuses = []condition.Application{
			afflict(condition.ToxicVenom, venomTurns, c.Archetype, max(1, combat.Pct(atk, venomPct))),
		}
		return res
	case combat.CooldownScaleHardening:
		return combat.ActionResult{
			Message: fmt.Sprintf("%s hardens its scales", c.Name),
			Notes:   []string{selfApply(c, afflict(condition.HardenedScales, hardenedTurns, c.Archetype, 0))},
		}
	case combat.CooldownCrushingBite:
		res := hit(c.Name+" clamps down with a crushing bite", l.vary(ctx, combat.Pct(atk, crushingBitePct)))
		res.Statuses = []condition.Application{afflict(condition.Stun, crushingStunTurns, c.Archetype, 0)}
		return res
	}
	panic(fmt.Sprintf("enemy: giant lizard has no ability %q", id))
}

// Bonus favors the tail against a fresh target, venom against a clean one,
// hardening when hurt, and the crushing bite to finish.
func (l *GiantLizard) Bonus(_ *combat.Combatant, action combat.Action, ctx ai.Context) int {
	switch action.Ability {
	case combat.CooldownTailWhip:
		if ctx.PlayerHealthy {
			return 20
		}
	case combat.CooldownVenomSpit:
		if !ctx.PlayerHasEffects {
			return 25
		}
	case combat.CooldownScaleHardening:
		if ctx.EnemyLow {
			return 30
		}
	case combat.CooldownCrushingBite:
		if ctx.PlayerLow {
			return 35
		}
	}
	return 0
}
