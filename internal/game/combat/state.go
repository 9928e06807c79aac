package combat

import (
	"encoding/json"
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/condition"
)

// State is the serializable mutable state of a Combatant.
type State struct {
	Name           string             `json:"name"`
	Archetype      Archetype          `json:"archetype"`
	Level          int                `json:"level"`
	MaxHP          int                `json:"max_hp"`
	HP             int                `json:"hp"`
	BaseAttack     int                `json:"base_attack"`
	Defense        int                `json:"defense"`
	Initiative     int                `json:"initiative"`
	Potions        int                `json:"potions"`
	RemainingMoves int                `json:"remaining_moves"`
	Cooldowns      map[Cooldown]int   `json:"cooldowns"`
	Statuses       []condition.Active `json:"statuses"`
	Defending      bool               `json:"defending"`
	LockPending    bool               `json:"lock_pending"`
	LockActive     bool               `json:"lock_active"`
	Turns          int                `json:"turns"`
	Behavior       json.RawMessage    `json:"behavior"`
}

// Capture returns the combatant's current mutable state.
func (c *Combatant) Capture() (State, error) {
	b, err := json.Marshal(c.behavior)
	if err != nil {
		return State{}, fmt.Errorf("combat: capturing %s behavior: %w", c.Name, err)
	}
	return State{
		Name:           c.Name,
		Archetype:      c.Archetype,
		Level:          c.Level,
		MaxHP:          c.MaxHP,
		HP:             c.hp,
		BaseAttack:     c.BaseAttack,
		Defense:        c.Defense,
		Initiative:     c.Initiative,
		Potions:        c.Potions,
		RemainingMoves: c.moves.Remaining(),
		Cooldowns:      c.cooldowns.Map(),
		Statuses:       c.statuses.All(),
		Defending:      c.defending,
		LockPending:    c.lockPending,
		LockActive:     c.lockActive,
		Turns:          c.turns,
		Behavior:       b,
	}, nil
}

// Restore overwrites the combatant's mutable state with s.
//
// Precondition: s must have been captured from a combatant of the same archetype.
// Postcondition: on error the combatant may be partially restored and must be discarded.
func (c *Combatant) Restore(s State) error {
	if s.Archetype != c.Archetype {
		return fmt.Errorf("combat: cannot restore %s state onto %s", s.Archetype, c.Archetype)
	}
	if s.MaxHP < 1 {
		return fmt.Errorf("combat: restored max HP must be >= 1, got %d", s.MaxHP)
	}
	if err := c.cooldowns.Restore(s.Cooldowns); err != nil {
		return err
	}
	if err := c.statuses.Restore(s.Statuses); err != nil {
		return err
	}
	if len(s.Behavior) > 0 {
		if err := json.Unmarshal(s.Behavior, c.behavior); err != nil {
			return fmt.Errorf("combat: restoring %s behavior: %w", c.Name, err)
		}
	}
	c.Name = s.Name
	c.Level = s.Level
	c.MaxHP = s.MaxHP
	c.SetHP(s.HP)
	c.BaseAttack = s.BaseAttack
	c.Defense = s.Defense
	c.Initiative = s.Initiative
	c.Potions = s.Potions
	c.moves.restore(s.RemainingMoves)
	c.defending = s.Defending
	c.lockPending = s.LockPending
	c.lockActive = s.LockActive
	c.turns = s.Turns
	return nil
}

// Stats is a read-only public view of a combatant for status displays.
type Stats struct {
	Name           string             `json:"name"`
	Kind           string             `json:"kind"`
	Archetype      Archetype          `json:"archetype"`
	Level          int                `json:"level"`
	HP             int                `json:"hp"`
	MaxHP          int                `json:"max_hp"`
	Attack         int                `json:"attack"`
	Defense        int                `json:"defense"`
	Initiative     int                `json:"initiative"`
	RemainingMoves int                `json:"remaining_moves"`
	MovesPerTurn   int                `json:"moves_per_turn"`
	Potions        int                `json:"potions"`
	Cooldowns      map[Cooldown]int   `json:"cooldowns"`
	Statuses       []condition.Active `json:"statuses"`
	Defending      bool               `json:"defending"`
	Alive          bool               `json:"alive"`
}

// Stats returns the combatant's public view.
func (c *Combatant) Stats() Stats {
	return Stats{
		Name:           c.Name,
		Kind:           c.Kind.String(),
		Archetype:      c.Archetype,
		Level:          c.Level,
		HP:             c.hp,
		MaxHP:          c.MaxHP,
		Attack:         c.Attack(),
		Defense:        c.TotalDefense(),
		Initiative:     c.Initiative,
		RemainingMoves: c.moves.Remaining(),
		MovesPerTurn:   c.moves.PerTurn(),
		Potions:        c.Potions,
		Cooldowns:      c.cooldowns.Map(),
		Statuses:       c.statuses.All(),
		Defending:      c.defending,
		Alive:          c.IsAlive(),
	}
}
