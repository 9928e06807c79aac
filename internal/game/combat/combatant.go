// Package combat implements the combatant model shared by players and enemies:
// resources, cooldowns, status effects, and the action contract every
// archetype resolves through.
package combat

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Kind distinguishes player combatants from enemy combatants.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
)

// String returns "player" or "enemy".
func (k Kind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "enemy"
}

// Archetype tags the class or enemy family whose formulas a combatant uses.
type Archetype string

const (
	Warrior Archetype = "warrior"
	Rogue   Archetype = "rogue"
	Mage    Archetype = "mage"

	SmallHumanoid Archetype = "small_humanoid"
	MediumBeast   Archetype = "medium_beast"
	LargeBeast    Archetype = "large_beast"
	Gladiator     Archetype = "gladiator"
)

// PlayerArchetypes lists the player classes.
var PlayerArchetypes = []Archetype{Warrior, Rogue, Mage}

// EnemyArchetypes lists the enemy families.
var EnemyArchetypes = []Archetype{SmallHumanoid, MediumBeast, LargeBeast, Gladiator}

// IsPlayer reports whether a is a player class.
func (a Archetype) IsPlayer() bool {
	for _, p := range PlayerArchetypes {
		if a == p {
			return true
		}
	}
	return false
}

// IsEnemy reports whether a is an enemy family.
func (a Archetype) IsEnemy() bool {
	for _, e := range EnemyArchetypes {
		if a == e {
			return true
		}
	}
	return false
}

// Profile is an enemy difficulty profile.
type Profile string

const (
	ProfileNormal     Profile = "normal"
	ProfileAggressive Profile = "aggressive"
)

// Equipment holds optional gear whose bonuses add to base stats.
type Equipment struct {
	Weapon      string `json:"weapon,omitempty" yaml:"weapon"`
	WeaponBonus int    `json:"weapon_bonus" yaml:"weapon_bonus"`
	Armor       string `json:"armor,omitempty" yaml:"armor"`
	ArmorBonus  int    `json:"armor_bonus" yaml:"armor_bonus"`
}

// Context carries what an action needs beyond the acting combatant.
type Context struct {
	Src dice.Source
	// Target is the opposing combatant. Formulas may read it; only the
	// orchestrator mutates it.
	Target *Combatant
}

// Spec is the construction input for a Combatant.
type Spec struct {
	ID             string
	Kind           Kind
	Name           string
	Archetype      Archetype
	Level          int
	MaxHP          int
	BaseAttack     int
	Defense        int
	BaseInitiative int
	MovesPerTurn   int
	Potions        int
	Equipment      Equipment
}

// Combatant is a single participant in an arena combat.
//
// Invariant: 0 <= HP() <= MaxHP; 0 <= RemainingMoves() <= MovesPerTurn();
// every cooldown >= 0; IsAlive() iff HP() > 0.
type Combatant struct {
	ID        string
	Kind      Kind
	Name      string
	Archetype Archetype
	Level     int
	MaxHP     int
	// BaseAttack and Defense exclude equipment. Permanent self-buffs such as
	// frenzy raise BaseAttack directly.
	BaseAttack     int
	Defense        int
	BaseInitiative int
	// Initiative is the current initiative, reset to BaseInitiative at combat start.
	Initiative int
	Potions    int
	Equipment  Equipment

	hp          int
	moves       Moves
	cooldowns   *Cooldowns
	statuses    *condition.ActiveSet
	defending   bool
	lockPending bool
	lockActive  bool
	turns       int
	behavior    Behavior
}

// New builds a Combatant from spec, backed by behavior and the status registry reg.
//
// Precondition: behavior and reg must be non-nil.
// Postcondition: returns a full-health combatant with every cooldown ready, or an
// error describing the invalid spec.
func New(spec Spec, behavior Behavior, reg *condition.Registry) (*Combatant, error) {
	if behavior == nil || reg == nil {
		panic("combat: New precondition violated: behavior and reg must be non-nil")
	}
	switch {
	case spec.Kind == KindPlayer && !spec.Archetype.IsPlayer():
		return nil, fmt.Errorf("combat: %q is not a player archetype", spec.Archetype)
	case spec.Kind == KindEnemy && !spec.Archetype.IsEnemy():
		return nil, fmt.Errorf("combat: %q is not an enemy archetype", spec.Archetype)
	case spec.MaxHP < 1:
		return nil, fmt.Errorf("combat: max HP must be >= 1, got %d", spec.MaxHP)
	case spec.MovesPerTurn < 1:
		return nil, fmt.Errorf("combat: moves per turn must be >= 1, got %d", spec.MovesPerTurn)
	case spec.Level < 1:
		return nil, fmt.Errorf("combat: level must be >= 1, got %d", spec.Level)
	case spec.BaseAttack < 0 || spec.Defense < 0 || spec.Potions < 0:
		return nil, fmt.Errorf("combat: attack, defense and potions must be >= 0")
	}
	keys := append([]Cooldown{CooldownHeavy, CooldownHeal}, behavior.Cooldowns()...)
	cds, err := NewCooldowns(keys...)
	if err != nil {
		return nil, err
	}
	c := &Combatant{
		ID:             spec.ID,
		Kind:           spec.Kind,
		Name:           spec.Name,
		Archetype:      spec.Archetype,
		Level:          spec.Level,
		MaxHP:          spec.MaxHP,
		BaseAttack:     spec.BaseAttack,
		Defense:        spec.Defense,
		BaseInitiative: spec.BaseInitiative,
		Initiative:     spec.BaseInitiative,
		Potions:        spec.Potions,
		Equipment:      spec.Equipment,
		hp:             spec.MaxHP,
		moves:          NewMoves(spec.MovesPerTurn),
		cooldowns:      cds,
		statuses:       condition.NewActiveSet(reg),
		behavior:       behavior,
	}
	behavior.Reset(c)
	return c, nil
}

// HP returns current hit points.
func (c *Combatant) HP() int { return c.hp }

// IsAlive reports whether HP is above zero.
func (c *Combatant) IsAlive() bool { return c.hp > 0 }

// HPRatio returns HP as a fraction of MaxHP.
func (c *Combatant) HPRatio() float64 {
	return float64(c.hp) / float64(c.MaxHP)
}

// SetHP sets HP, clamped to [0, MaxHP].
func (c *Combatant) SetHP(hp int) {
	c.hp = clamp(hp, 0, c.MaxHP)
}

// Attack returns base attack plus the weapon bonus.
func (c *Combatant) Attack() int { return c.BaseAttack + c.Equipment.WeaponBonus }

// TotalDefense returns defense plus the armor bonus.
func (c *Combatant) TotalDefense() int { return c.Defense + c.Equipment.ArmorBonus }

// RemainingMoves returns the moves left this turn.
func (c *Combatant) RemainingMoves() int { return c.moves.Remaining() }

// MovesPerTurn returns the per-turn move budget.
func (c *Combatant) MovesPerTurn() int { return c.moves.PerTurn() }

// Cooldowns exposes the combatant's cooldown counters.
func (c *Combatant) Cooldowns() *Cooldowns { return c.cooldowns }

// Statuses exposes the combatant's active status effects.
func (c *Combatant) Statuses() *condition.ActiveSet { return c.statuses }

// IsDefending reports whether the combatant defended during its current or most recent turn.
func (c *Combatant) IsDefending() bool { return c.defending }

// AttackLocked reports whether damaging actions are blocked, either because a
// heavy attack was just used or because the lockout carried into this turn.
func (c *Combatant) AttackLocked() bool { return c.lockPending || c.lockActive }

// Turns returns how many of its own turns the combatant has started this combat.
func (c *Combatant) Turns() int { return c.turns }

// Behavior returns the archetype behavior driving this combatant.
func (c *Combatant) Behavior() Behavior { return c.behavior }

// Untargetable reports whether the combatant cannot currently be targeted.
func (c *Combatant) Untargetable() bool {
	if h, ok := c.behavior.(Concealer); ok {
		return h.Untargetable(c)
	}
	return false
}

// ResetForCombat restores every transient combat state to its baseline. HP and
// potions carry over between combats.
//
// Postcondition: full moves, no statuses, no flags, all cooldowns ready,
// Initiative == BaseInitiative, Turns() == 0.
func (c *Combatant) ResetForCombat() {
	c.moves.Reset()
	c.defending = false
	c.lockPending = false
	c.lockActive = false
	c.statuses.Clear()
	c.cooldowns.Reset()
	c.Initiative = c.BaseInitiative
	c.turns = 0
	c.behavior.Reset(c)
}

// ApplyStatus attaches app to the combatant. Chill additionally extends every
// running cooldown by one turn.
//
// Postcondition: returns a log message on success, or an error if the effect is
// unknown or its source may not apply it.
func (c *Combatant) ApplyStatus(app condition.Application) (string, error) {
	if err := c.statuses.Apply(app); err != nil {
		return "", err
	}
	if app.Kind == condition.Chill {
		c.cooldowns.Extend(1)
		return fmt.Sprintf("%s is chilled; cooldowns slowed", c.Name), nil
	}
	return fmt.Sprintf("%s is affected by %s", c.Name, app.Kind), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// pct returns floor(v * p / 100) for non-negative v.
func pct(v, p int) int {
	return v * p / 100
}

// Pct returns floor(v * p / 100); archetype formulas use it to keep multiplier
// arithmetic exact.
func Pct(v, p int) int {
	if v <= 0 {
		return 0
	}
	return pct(v, p)
}
