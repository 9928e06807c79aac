package combat

import (
	"fmt"
	"sort"
)

// Cooldown names an ability whose use is throttled by a turn counter.
// The set of cooldowns is closed; each combatant registers the subset it owns
// at construction and any other key is a programming error.
type Cooldown string

const (
	CooldownHeavy Cooldown = "heavy"
	CooldownHeal  Cooldown = "heal"

	CooldownEndure    Cooldown = "endure"
	CooldownStealth   Cooldown = "stealth"
	CooldownBackstab  Cooldown = "backstab"
	CooldownFirestorm Cooldown = "firestorm"

	CooldownPoisonedBlade  Cooldown = "poisoned_blade"
	CooldownDirtyFighting  Cooldown = "dirty_fighting"
	CooldownSavageBite     Cooldown = "savage_bite"
	CooldownHowl           Cooldown = "howl"
	CooldownPackTactics    Cooldown = "pack_tactics"
	CooldownTailWhip       Cooldown = "tail_whip"
	CooldownVenomSpit      Cooldown = "venom_spit"
	CooldownScaleHardening Cooldown = "scale_hardening"
	CooldownCrushingBite   Cooldown = "crushing_bite"
	CooldownIronGuard      Cooldown = "iron_guard"
	CooldownEndurance      Cooldown = "battle_endurance"
	CooldownExecution      Cooldown = "execution_strike"
	CooldownWarriorShout   Cooldown = "warrior_shout"
)

var knownCooldowns = map[Cooldown]bool{
	CooldownHeavy: true, CooldownHeal: true,
	CooldownEndure: true, CooldownStealth: true, CooldownBackstab: true, CooldownFirestorm: true,
	CooldownPoisonedBlade: true, CooldownDirtyFighting: true,
	CooldownSavageBite: true, CooldownHowl: true, CooldownPackTactics: true,
	CooldownTailWhip: true, CooldownVenomSpit: true, CooldownScaleHardening: true, CooldownCrushingBite: true,
	CooldownIronGuard: true, CooldownEndurance: true, CooldownExecution: true, CooldownWarriorShout: true,
}

// Valid reports whether c is a known cooldown.
func (c Cooldown) Valid() bool {
	return knownCooldowns[c]
}

// Cooldowns holds the turn counters for one combatant's registered abilities.
//
// Invariant: every value is >= 0; only registered keys are present.
type Cooldowns struct {
	values map[Cooldown]int
}

// NewCooldowns registers keys, all initially ready.
//
// Postcondition: returns an error for an unknown or duplicated key.
func NewCooldowns(keys ...Cooldown) (*Cooldowns, error) {
	values := make(map[Cooldown]int, len(keys))
	for _, k := range keys {
		if !k.Valid() {
			return nil, fmt.Errorf("combat: unknown cooldown %q", k)
		}
		if _, dup := values[k]; dup {
			return nil, fmt.Errorf("combat: cooldown %q registered twice", k)
		}
		values[k] = 0
	}
	return &Cooldowns{values: values}, nil
}

// Has reports whether k is registered.
func (c *Cooldowns) Has(k Cooldown) bool {
	_, ok := c.values[k]
	return ok
}

// Get returns the turns remaining on k.
//
// Precondition: k must be registered.
func (c *Cooldowns) Get(k Cooldown) int {
	v, ok := c.values[k]
	if !ok {
		panic(fmt.Sprintf("combat: Cooldowns.Get precondition violated: %q not registered", k))
	}
	return v
}

// Ready reports whether k is registered and at zero.
func (c *Cooldowns) Ready(k Cooldown) bool {
	v, ok := c.values[k]
	return ok && v == 0
}

// Set puts k on cooldown for turns, floored at zero.
//
// Precondition: k must be registered.
func (c *Cooldowns) Set(k Cooldown, turns int) {
	if _, ok := c.values[k]; !ok {
		panic(fmt.Sprintf("combat: Cooldowns.Set precondition violated: %q not registered", k))
	}
	if turns < 0 {
		turns = 0
	}
	c.values[k] = turns
}

// Tick lowers every counter by one, never below zero.
func (c *Cooldowns) Tick() {
	for k, v := range c.values {
		if v > 0 {
			c.values[k] = v - 1
		}
	}
}

// Extend adds n turns to every counter that is currently running.
func (c *Cooldowns) Extend(n int) {
	for k, v := range c.values {
		if v > 0 {
			c.values[k] = v + n
		}
	}
}

// Reset makes every ability ready.
func (c *Cooldowns) Reset() {
	for k := range c.values {
		c.values[k] = 0
	}
}

// AnyActive reports whether any counter is running.
func (c *Cooldowns) AnyActive() bool {
	for _, v := range c.values {
		if v > 0 {
			return true
		}
	}
	return false
}

// Keys returns the registered keys in lexical order.
func (c *Cooldowns) Keys() []Cooldown {
	keys := make([]Cooldown, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Map returns a copy of the counters.
func (c *Cooldowns) Map() map[Cooldown]int {
	out := make(map[Cooldown]int, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Restore overwrites the counters from m.
//
// Postcondition: returns an error, leaving c unchanged, if m names an
// unregistered key or a negative value.
func (c *Cooldowns) Restore(m map[Cooldown]int) error {
	for k, v := range m {
		if _, ok := c.values[k]; !ok {
			return fmt.Errorf("combat: cooldown %q not registered", k)
		}
		if v < 0 {
			return fmt.Errorf("combat: cooldown %q is negative (%d)", k, v)
		}
	}
	for k, v := range m {
		c.values[k] = v
	}
	return nil
}
