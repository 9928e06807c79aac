package enemy

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
)

const (
	poisonedBladePct = 80
	poisonTurns      = 3
	blindTurns       = 2
)

// Goblin is a small humanoid that fights dirty: a poisoned blade and a
// handful of dirt to the eyes.
type Goblin struct {
	base
}

func (g *Goblin) Reset(*combat.Combatant) {}

func (g *Goblin) UseAbility(c *combat.Combatant, id combat.Cooldown, ctx combat.Context) combat.ActionResult {
	atk := c.Attack()
	switch id {
	case combat.CooldownPoisonedBlade:
		res := hit(c.Name+" slashes with a poisoned blade", g.vary(ctx, combat.Pct(atk, poisonedBladePct)))
		res.Statuses = []condition.Application{afflict(condition.Poison, poisonTurns, c.Archetype, max(1, atk/5))}
		return res
	case combat.CooldownDirtyFighting:
		return combat.ActionResult{
			Statuses: []condition.Application{afflict(condition.Blinded, blindTurns, c.Archetype, 0)},
			Message:  fmt.Sprintf("%s throws dirt into its opponent's eyes", c.Name),
		}
	}
	panic(fmt.Sprintf("enemy: goblin has no ability %q", id))
}

// Bonus favors poison against a clean target and blinding against a healthy one.
func (g *Goblin) Bonus(_ *combat.Combatant, action combat.Action, ctx ai.Context) int {
	switch action.Ability {
	case combat.CooldownPoisonedBlade:
		if !ctx.PlayerHasEffects {
			return 20
		}
	case combat.CooldownDirtyFighting:
		if ctx.PlayerHealthy {
			return 15
		}
	}
	return 0
}
