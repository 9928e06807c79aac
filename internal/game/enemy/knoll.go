package enemy

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
)

const (
	knollArmorPct       = 20
	savageBitePct       = 120
	knollBleedPct       = 30
	knollBleedTurns     = 4
	howlTurns           = 3
	packWoundedPct      = 200
	packPct             = 150
	packWoundedRatio    = 0.5
	frenzyRatio         = 0.3
	frenzyAttackPct     = 130
	frenzyInitiativePct = 120
)

// Knoll is a medium beast that hunts wounded prey and frenzies when hurt.
//
// Frenzy triggers once, the first time HP falls to 30% or below, and raises
// BaseAttack and Initiative for the rest of the combat.
type Knoll struct {
	base
	Frenzied bool `json:"frenzied"`
}

func (k *Knoll) Reset(*combat.Combatant) { k.Frenzied = false }

func (k *Knoll) Mitigate(c *combat.Combatant, raw int, _ combat.Context) combat.Mitigation {
	return k.mitigate(c, raw, combat.Pct(c.TotalDefense(), knollArmorPct))
}

func (k *Knoll) OnDamaged(c *combat.Combatant) []string {
	if k.Frenzied || c.HPRatio() > frenzyRatio {
		return nil
	}
	k.Frenzied = true
	c.BaseAttack = combat.Pct(c.BaseAttack, frenzyAttackPct)
	c.Initiative = combat.Pct(c.Initiative, frenzyInitiativePct)
	return []string{
		fmt.Sprintf("%s enters a frenzy", c.Name),
		selfApply(c, afflict(condition.Frenzy, 0, c.Archetype, 0)),
	}
}

func (k *Knoll) UseAbility(c *combat.Combatant, id combat.Cooldown, ctx combat.Context) combat.ActionResult {
	atk := c.Attack()
	switch id {
	case combat.CooldownSavageBite:
		res := hit(c.Name+" sinks its teeth in", k.vary(ctx, combat.Pct(atk, savageBitePct)))
		res.Statuses = []condition.Application{
			afflict(condition.Bleed, knollBleedTurns, c.Archetype, max(1, combat.Pct(atk, knollBleedPct))),
		}
		return res
	case combat.CooldownHowl:
		return combat.ActionResult{
			Statuses: []condition.Application{afflict(condition.Intimidated, howlTurns, c.Archetype, 0)},
			Message:  fmt.Sprintf("%s lets out a bone-chilling howl", c.Name),
		}
	case combat.CooldownPackTactics:
		p := packPct
		if ctx.Target != nil && ctx.Target.HPRatio() <= packWoundedRatio {
			p = packWoundedPct
		}
		return hit(c.Name+" presses the attack like a pack hunter", k.vary(ctx, combat.Pct(atk, p)))
	}
	panic(fmt.Sprintf("enemy: knoll has no ability %q", id))
}

// Bonus favors bites to finish, howls while fresh, and pack tactics on wounded prey.
func (k *Knoll) Bonus(_ *combat.Combatant, action combat.Action, ctx ai.Context) int {
	switch action.Ability {
	case combat.CooldownSavageBite:
		if ctx.PlayerLow {
			return 25
		}
	case combat.CooldownHowl:
		if ctx.EnemyHealthy {
			return 20
		}
	case combat.CooldownPackTactics:
		if ctx.PlayerHPRatio < 0.6 {
			return 30
		}
	}
	return 0
}
