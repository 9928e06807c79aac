package combat

import "github.com/cory-johannsen/arena/internal/game/condition"

// ActionResult is the outcome of one action attempt.
type ActionResult struct {
	Action  Action
	Success bool
	// Missed is set when an accuracy debuff made a damaging action whiff.
	Missed   bool
	Damage   int
	Hits     []int
	Critical bool
	Healed   int
	// Statuses are to be applied to the opponent.
	Statuses []condition.Application
	Message  string
	// Notes are special-state triggers worth logging.
	Notes []string
}

// Failed builds an unsuccessful result for action.
func Failed(action Action, msg string) ActionResult {
	return ActionResult{Action: action, Message: msg}
}

// DamageOutcome is the result of damage landing on a combatant.
type DamageOutcome struct {
	Raw   int
	Final int
	HP    int
	Alive bool
	// Evaded is set when mitigation avoided the hit entirely.
	Evaded    bool
	Reflected int
	Counter   int
	Notes     []string
}

// StatusTick reports one status effect processed at turn start.
type StatusTick struct {
	Kind    condition.Kind
	Damage  int
	Expired bool
}

// TurnReport summarises what happened at a combatant's turn start.
type TurnReport struct {
	Turn int
	// LockedOut is set when damaging actions are blocked for this turn.
	LockedOut bool
	Ticks     []StatusTick
	Notes     []string
	// Died is set when status damage killed the combatant.
	Died bool
}
