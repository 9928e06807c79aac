// Package condition implements status effects: their definitions, stacking and
// refresh rules, and the per-turn tick.
package condition

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/content"
)

// Kind identifies a status effect. The set of kinds is closed; anything outside
// AllKinds is rejected at load and apply time.
type Kind string

const (
	Bleed          Kind = "bleed"
	Burn           Kind = "burn"
	Chill          Kind = "chill"
	Expose         Kind = "expose"
	Poison         Kind = "poison"
	Stun           Kind = "stun"
	Shocked        Kind = "shocked"
	Blinded        Kind = "blinded"
	Intimidated    Kind = "intimidated"
	ToxicVenom     Kind = "toxic_venom"
	HardenedScales Kind = "hardened_scales"
	IronGuard      Kind = "iron_guard"
	BattleFury     Kind = "battle_fury"
	Frenzy         Kind = "frenzy"
	Berserker      Kind = "berserker"
)

// AllKinds lists every status effect kind in declaration order.
var AllKinds = []Kind{
	Bleed, Burn, Chill, Expose, Poison, Stun, Shocked, Blinded, Intimidated,
	ToxicVenom, HardenedScales, IronGuard, BattleFury, Frenzy, Berserker,
}

// Valid reports whether k is one of AllKinds.
func (k Kind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// DurationType controls how an active effect expires.
type DurationType string

const (
	// Turns effects lose one turn of duration at each owner turn start.
	Turns DurationType = "turns"
	// Consumed effects persist until explicitly consumed.
	Consumed DurationType = "consumed"
	// Permanent effects last for the rest of the combat.
	Permanent DurationType = "permanent"
)

// Def is the static definition of a status effect, loaded from YAML.
type Def struct {
	Kind         Kind         `yaml:"kind"`
	Name         string       `yaml:"name"`
	Description  string       `yaml:"description"`
	DurationType DurationType `yaml:"duration_type"`
	MaxStacks    int          `yaml:"max_stacks"`
	// RefreshOnly effects never stack; re-applying only resets the duration.
	RefreshOnly bool `yaml:"refresh_only"`
	// Sources lists the archetypes allowed to apply this effect; empty allows any.
	Sources []string `yaml:"sources"`
	// TickDamage deals Magnitude (times stacks when StackDamage) at each tick.
	TickDamage  bool `yaml:"tick_damage"`
	StackDamage bool `yaml:"stack_damage"`
	// MissChance is the probability the afflicted combatant misses a damaging action.
	MissChance float64 `yaml:"miss_chance"`
	// HealReduction is the fraction removed from healing received.
	HealReduction float64 `yaml:"heal_reduction"`
	// BlocksAttacks prevents damaging actions while active.
	BlocksAttacks bool `yaml:"blocks_attacks"`
}

// Validate checks that d is internally consistent.
//
// Postcondition: Returns nil if d is valid, or an error naming the first violation.
func (d *Def) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("condition: unknown kind %q", d.Kind)
	}
	if d.Name == "" {
		return fmt.Errorf("condition %q: name must not be empty", d.Kind)
	}
	switch d.DurationType {
	case Turns, Consumed, Permanent:
	default:
		return fmt.Errorf("condition %q: duration_type must be one of [turns, consumed, permanent], got %q", d.Kind, d.DurationType)
	}
	if d.MaxStacks < 1 {
		return fmt.Errorf("condition %q: max_stacks must be >= 1, got %d", d.Kind, d.MaxStacks)
	}
	if d.RefreshOnly && d.MaxStacks != 1 {
		return fmt.Errorf("condition %q: refresh_only effects must have max_stacks 1", d.Kind)
	}
	if d.MissChance < 0 || d.MissChance >= 1 {
		return fmt.Errorf("condition %q: miss_chance must be in [0, 1), got %v", d.Kind, d.MissChance)
	}
	if d.HealReduction < 0 || d.HealReduction > 1 {
		return fmt.Errorf("condition %q: heal_reduction must be in [0, 1], got %v", d.Kind, d.HealReduction)
	}
	return nil
}

// AllowsSource reports whether an effect from archetype source may be applied.
func (d *Def) AllowsSource(source string) bool {
	if len(d.Sources) == 0 {
		return true
	}
	for _, s := range d.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// Registry holds all known Defs keyed by Kind.
type Registry struct {
	defs map[Kind]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Kind]*Def)}
}

// Register validates def and adds it to the registry.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error if def is invalid or its kind is already registered.
func (r *Registry) Register(def *Def) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, exists := r.defs[def.Kind]; exists {
		return fmt.Errorf("condition: kind %q already registered", def.Kind)
	}
	r.defs[def.Kind] = def
	return nil
}

// Get returns the Def for kind, or (nil, false) if not found.
func (r *Registry) Get(kind Kind) (*Def, bool) {
	d, ok := r.defs[kind]
	return d, ok
}

// All returns every registered Def ordered by kind.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Complete reports an error naming every kind that has no registered Def.
func (r *Registry) Complete() error {
	var missing []string
	for _, k := range AllKinds {
		if _, ok := r.defs[k]; !ok {
			missing = append(missing, string(k))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("condition: missing definitions for [%s]", strings.Join(missing, ", "))
	}
	return nil
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def,
// and returns a complete Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Registry covering AllKinds, or an error.
func LoadDirectory(dir string) (*Registry, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS is LoadDirectory over an fs.FS, used for embedded content.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		p := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("registering %q: %w", p, err)
		}
	}
	if err := reg.Complete(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Default loads the embedded status effect definitions.
//
// Postcondition: Returns a complete Registry, or an error if the embedded content is invalid.
func Default() (*Registry, error) {
	return LoadFS(content.FS, "conditions")
}
