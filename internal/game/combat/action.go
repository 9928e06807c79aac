package combat

import "fmt"

// ActionKind identifies what a combatant does with its turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionKind int

const (
	ActionUnknown ActionKind = iota // zero value; intentionally invalid
	ActionLight                     // costs 1 move
	ActionHeavy                     // costs 1 move; 2-turn cooldown and attack lockout
	ActionDefend                    // costs 1 move
	ActionHeal                      // costs 1 move and one potion
	ActionElite                     // costs 2 moves; level 3+
	ActionAbility                   // costs 1 move; enemy signature abilities
)

// Cost returns the move cost for the ActionKind.
//
// Postcondition: returns 2 for ActionElite, 0 for ActionUnknown, and 1 otherwise.
func (a ActionKind) Cost() int {
	switch a {
	case ActionElite:
		return 2
	case ActionUnknown:
		return 0
	default:
		return 1
	}
}

// String returns the command name of the ActionKind.
func (a ActionKind) String() string {
	switch a {
	case ActionLight:
		return "attack"
	case ActionHeavy:
		return "heavy_attack"
	case ActionDefend:
		return "defend"
	case ActionHeal:
		return "heal"
	case ActionElite:
		return "elite"
	case ActionAbility:
		return "ability"
	default:
		return "unknown"
	}
}

// ParseCommand maps a player command name to its ActionKind.
//
// Postcondition: returns an error for anything outside attack, heavy_attack,
// defend, heal, and elite.
func ParseCommand(cmd string) (ActionKind, error) {
	switch cmd {
	case "attack":
		return ActionLight, nil
	case "heavy_attack":
		return ActionHeavy, nil
	case "defend":
		return ActionDefend, nil
	case "heal":
		return ActionHeal, nil
	case "elite":
		return ActionElite, nil
	default:
		return ActionUnknown, fmt.Errorf("unknown command %q", cmd)
	}
}

// Trait tags an action with qualities the enemy decision model scores against.
type Trait uint16

const (
	TraitAttack    Trait = 1 << iota // the basic attack
	TraitHeavy                       // the heavy attack
	TraitDamaging                    // deals damage; blocked by lockout, subject to misses
	TraitTargeted                    // needs a targetable opponent
	TraitStatus                      // applies a status effect to the opponent
	TraitControl                     // hampers the opponent's actions
	TraitDefensive                   // reduces incoming damage
	TraitBuff                        // strengthens the user
	TraitFinisher                    // scales with the opponent's missing health
)

var traitNames = []struct {
	t    Trait
	name string
}{
	{TraitAttack, "attack"},
	{TraitHeavy, "heavy"},
	{TraitDamaging, "damaging"},
	{TraitTargeted, "targeted"},
	{TraitStatus, "status"},
	{TraitControl, "control"},
	{TraitDefensive, "defensive"},
	{TraitBuff, "buff"},
	{TraitFinisher, "finisher"},
}

// Has reports whether t includes every trait in other.
func (t Trait) Has(other Trait) bool {
	return t&other == other
}

// ParseTrait maps a trait name to its Trait.
func ParseTrait(name string) (Trait, error) {
	for _, tn := range traitNames {
		if tn.name == name {
			return tn.t, nil
		}
	}
	return 0, fmt.Errorf("unknown trait %q", name)
}

// Action describes one selectable action: a base action or an enemy ability.
type Action struct {
	Kind ActionKind
	// Ability is the ability's cooldown key; set only for ActionAbility.
	Ability Cooldown
	Name    string
	Traits  Trait
	// CooldownTurns is the cooldown an ability goes on after use.
	CooldownTurns int
}

// String returns the action's display name.
func (a Action) String() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Kind.String()
}

// Base actions shared by every enemy.
var (
	AttackAction = Action{Kind: ActionLight, Name: "attack", Traits: TraitAttack | TraitDamaging | TraitTargeted}
	HeavyAction  = Action{Kind: ActionHeavy, Name: "heavy_attack", Traits: TraitHeavy | TraitDamaging | TraitTargeted}
	DefendAction = Action{Kind: ActionDefend, Name: "defend", Traits: TraitDefensive}
)

// Moves tracks a combatant's per-turn move budget.
//
// Invariant: 0 <= Remaining() <= PerTurn().
type Moves struct {
	perTurn   int
	remaining int
}

// NewMoves creates a budget of perTurn moves, initially full.
//
// Precondition: perTurn >= 1.
func NewMoves(perTurn int) Moves {
	if perTurn < 1 {
		panic(fmt.Sprintf("combat: NewMoves precondition violated: perTurn must be >= 1, got %d", perTurn))
	}
	return Moves{perTurn: perTurn, remaining: perTurn}
}

// PerTurn returns the budget restored at each turn start.
func (m Moves) PerTurn() int { return m.perTurn }

// Remaining returns the moves still available this turn.
func (m Moves) Remaining() int { return m.remaining }

// Spend deducts cost moves.
//
// Postcondition: on error the budget is unchanged.
func (m *Moves) Spend(cost int) error {
	if cost > m.remaining {
		return fmt.Errorf("insufficient moves: need %d, have %d", cost, m.remaining)
	}
	m.remaining -= cost
	return nil
}

// Reset restores the full budget.
func (m *Moves) Reset() {
	m.remaining = m.perTurn
}

func (m *Moves) restore(remaining int) {
	if remaining < 0 {
		remaining = 0
	}
	if remaining > m.perTurn {
		remaining = m.perTurn
	}
	m.remaining = remaining
}
