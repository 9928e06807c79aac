package combat

import (
	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Behavior supplies the archetype-specific formulas a Combatant resolves
// through. Gating, move accounting, cooldown bookkeeping, critical consumption,
// and heavy-attack lockout are shared and never reimplemented by a Behavior.
//
// Behaviors hold the archetype's transient combat state and must round-trip
// through encoding/json; configuration fields are tagged json:"-".
type Behavior interface {
	// Cooldowns lists the archetype's cooldown keys beyond heavy and heal.
	Cooldowns() []Cooldown
	// EliteCooldown names the cooldown gating the elite skill in the current
	// phase, or "" when the archetype has no elite.
	EliteCooldown(c *Combatant) Cooldown
	// Reset returns transient state to its baseline.
	Reset(c *Combatant)
	LightAttack(c *Combatant, ctx Context) Strike
	HeavyAttack(c *Combatant, ctx Context) Strike
	// Defend runs archetype side effects of defending and returns a message.
	Defend(c *Combatant) string
	// Elite runs the elite skill. Gating and move spending are already done;
	// the behavior sets its own cooldown.
	Elite(c *Combatant, ctx Context) ActionResult
	// Mitigate turns raw incoming damage into final damage.
	Mitigate(c *Combatant, raw int, ctx Context) Mitigation
	// StartTurn runs after the shared turn-start bookkeeping and returns
	// special-state messages.
	StartTurn(c *Combatant, wasDefending bool) []string
	// OnDamaged runs after HP drops and returns special-state messages.
	OnDamaged(c *Combatant) []string
}

// AbilityUser is implemented by behaviors with signature abilities.
type AbilityUser interface {
	Abilities() []Action
	// AbilityReady applies ability-specific gating beyond moves, cooldown, and lockout.
	AbilityReady(c *Combatant, id Cooldown) bool
	// UseAbility resolves ability id. Gating, move spending, and the cooldown
	// are already done.
	UseAbility(c *Combatant, id Cooldown, ctx Context) ActionResult
}

// Concealer is implemented by behaviors that can make the combatant untargetable.
type Concealer interface {
	Untargetable(c *Combatant) bool
}

// Reactor is implemented by behaviors that react to the opponent's actions.
// An empty string means no reaction.
type Reactor interface {
	React(c *Combatant, action ActionKind, src dice.Source) string
}

// Strike is the archetype's damage formula output for a light or heavy attack.
type Strike struct {
	// Hits holds per-hit damage before critical multiplication.
	Hits []int
	// Bonus is added once after critical multiplication.
	Bonus int
	// Critical forces a critical regardless of expose.
	Critical bool
	// Statuses are applied to the target when the strike lands.
	Statuses []condition.Application
	// Verb completes "<name> <verb> for N damage".
	Verb  string
	Notes []string
}

// Mitigation is the archetype's mitigation output for one incoming hit.
type Mitigation struct {
	Final  int
	Evaded bool
	// Reflected is dealt back to the attacker.
	Reflected int
	// Counter is a counter-attack dealt back to the attacker.
	Counter int
	Notes   []string
}
