package condition

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned when applying a kind with no registered Def.
	ErrUnknownKind = errors.New("condition: unknown kind")
	// ErrSourceNotAllowed is returned when an archetype may not apply a kind.
	ErrSourceNotAllowed = errors.New("condition: source not allowed")
)

// Application is a request to attach a status effect to a combatant.
type Application struct {
	Kind Kind `json:"kind"`
	// Duration is in owner turns; ignored for consumed and permanent effects.
	Duration int `json:"duration"`
	// Source is the archetype of the combatant that produced the effect.
	Source string `json:"source"`
	// Magnitude is the per-tick damage for damaging effects.
	Magnitude int `json:"magnitude"`
}

// Active tracks one applied status effect on a combatant.
type Active struct {
	Kind      Kind   `json:"kind"`
	Remaining int    `json:"remaining"` // -1 = consumed or permanent
	Source    string `json:"source"`
	Stacks    int    `json:"stacks"`
	MaxStacks int    `json:"max_stacks"`
	Magnitude int    `json:"magnitude"`
}

// TickResult reports what one effect did during a tick.
type TickResult struct {
	Kind    Kind
	Damage  int
	Stacks  int
	Expired bool
}

// ActiveSet is the ordered collection of status effects on one combatant.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	reg     *Registry
	effects []*Active
}

// NewActiveSet creates an empty ActiveSet backed by reg.
//
// Precondition: reg must not be nil.
func NewActiveSet(reg *Registry) *ActiveSet {
	if reg == nil {
		panic("condition: NewActiveSet precondition violated: reg must not be nil")
	}
	return &ActiveSet{reg: reg}
}

// Registry returns the definitions backing s.
func (s *ActiveSet) Registry() *Registry {
	return s.reg
}

// Apply attaches app to the set.
//
// A new effect starts at one stack. Re-applying a refresh-only effect resets its
// duration; re-applying any other effect resets its duration, adds a stack up to
// MaxStacks, and keeps the larger magnitude.
//
// Postcondition: on success Has(app.Kind) is true and Stacks(app.Kind) <= MaxStacks.
func (s *ActiveSet) Apply(app Application) error {
	def, ok := s.reg.Get(app.Kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, app.Kind)
	}
	if !def.AllowsSource(app.Source) {
		return fmt.Errorf("%w: %q cannot apply %q", ErrSourceNotAllowed, app.Source, app.Kind)
	}
	remaining := app.Duration
	if def.DurationType != Turns {
		remaining = -1
	}

	if existing := s.find(app.Kind); existing != nil {
		existing.Remaining = remaining
		existing.Source = app.Source
		if def.RefreshOnly {
			return nil
		}
		if existing.Stacks < existing.MaxStacks {
			existing.Stacks++
		}
		if app.Magnitude > existing.Magnitude {
			existing.Magnitude = app.Magnitude
		}
		return nil
	}

	s.effects = append(s.effects, &Active{
		Kind:      app.Kind,
		Remaining: remaining,
		Source:    app.Source,
		Stacks:    1,
		MaxStacks: def.MaxStacks,
		Magnitude: app.Magnitude,
	})
	return nil
}

// Tick processes every effect once, in application order: damaging effects
// report their damage and timed effects lose one turn, expiring at zero.
//
// Postcondition: for every result with Expired set, Has(result.Kind) is false.
func (s *ActiveSet) Tick() []TickResult {
	var results []TickResult
	kept := s.effects[:0]
	for _, a := range s.effects {
		def, _ := s.reg.Get(a.Kind)
		res := TickResult{Kind: a.Kind, Stacks: a.Stacks}
		if def.TickDamage {
			res.Damage = a.Magnitude
			if def.StackDamage {
				res.Damage *= a.Stacks
			}
		}
		if def.DurationType == Turns {
			a.Remaining--
			if a.Remaining <= 0 {
				res.Expired = true
			}
		}
		if !res.Expired {
			kept = append(kept, a)
		}
		results = append(results, res)
	}
	for i := len(kept); i < len(s.effects); i++ {
		s.effects[i] = nil
	}
	s.effects = kept
	return results
}

// Consume removes kind and reports whether it was present.
func (s *ActiveSet) Consume(kind Kind) bool {
	for i, a := range s.effects {
		if a.Kind == kind {
			s.effects = append(s.effects[:i], s.effects[i+1:]...)
			return true
		}
	}
	return false
}

// Remove deletes kind from the set. Removing an absent kind is a no-op.
//
// Postcondition: Has(kind) is false.
func (s *ActiveSet) Remove(kind Kind) {
	s.Consume(kind)
}

// Clear removes every effect.
func (s *ActiveSet) Clear() {
	s.effects = nil
}

// Has reports whether kind is currently active.
func (s *ActiveSet) Has(kind Kind) bool {
	return s.find(kind) != nil
}

// Stacks returns the current stack count for kind, or 0 if not present.
func (s *ActiveSet) Stacks(kind Kind) int {
	if a := s.find(kind); a != nil {
		return a.Stacks
	}
	return 0
}

// Len returns the number of active effects.
func (s *ActiveSet) Len() int {
	return len(s.effects)
}

// All returns copies of the active effects in application order.
func (s *ActiveSet) All() []Active {
	out := make([]Active, len(s.effects))
	for i, a := range s.effects {
		out[i] = *a
	}
	return out
}

// Restore replaces the set's contents with effects.
//
// Postcondition: Returns an error, leaving s unchanged, if any effect names an
// unregistered kind.
func (s *ActiveSet) Restore(effects []Active) error {
	restored := make([]*Active, 0, len(effects))
	for _, e := range effects {
		if _, ok := s.reg.Get(e.Kind); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
		}
		e := e
		restored = append(restored, &e)
	}
	s.effects = restored
	return nil
}

// MissChance returns the combined chance that a damaging action misses, capped below 1.
func (s *ActiveSet) MissChance() float64 {
	total := 0.0
	for _, a := range s.effects {
		def, _ := s.reg.Get(a.Kind)
		total += def.MissChance
	}
	if total > 0.9 {
		return 0.9
	}
	return total
}

// HealReduction returns the largest heal reduction among active effects.
func (s *ActiveSet) HealReduction() float64 {
	max := 0.0
	for _, a := range s.effects {
		def, _ := s.reg.Get(a.Kind)
		if def.HealReduction > max {
			max = def.HealReduction
		}
	}
	return max
}

// BlocksAttacks reports whether any active effect prevents damaging actions.
func (s *ActiveSet) BlocksAttacks() bool {
	for _, a := range s.effects {
		def, _ := s.reg.Get(a.Kind)
		if def.BlocksAttacks {
			return true
		}
	}
	return false
}

func (s *ActiveSet) find(kind Kind) *Active {
	for _, a := range s.effects {
		if a.Kind == kind {
			return a
		}
	}
	return nil
}
