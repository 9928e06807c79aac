// Package class implements the three player classes: their stat table, level
// scaling, and the Warrior, Rogue and Mage combat behaviors.
package class

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/content"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
)

var (
	// ErrUnknownClass is returned for an archetype that is not a player class.
	ErrUnknownClass = errors.New("class: unknown class")
	// ErrInvalidLevel is returned for a level outside [1, Table.MaxLevel].
	ErrInvalidLevel = errors.New("class: invalid level")
)

// Row holds one class's level-1 stats.
type Row struct {
	Archetype          combat.Archetype `yaml:"archetype"`
	Name               string           `yaml:"name"`
	BaseHP             int              `yaml:"base_hp"`
	BaseAttack         int              `yaml:"base_attack"`
	Defense            int              `yaml:"defense"`
	Initiative         int              `yaml:"initiative"`
	InitiativePerLevel int              `yaml:"initiative_per_level"`
}

// Growth is the stat gain for each level above 1.
type Growth struct {
	HP      int `yaml:"hp"`
	Attack  int `yaml:"attack"`
	Defense int `yaml:"defense"`
}

// Table is the player class stat table.
type Table struct {
	MaxLevel int    `yaml:"max_level"`
	Potions  int    `yaml:"potions"`
	PerLevel Growth `yaml:"per_level"`
	Classes  []Row  `yaml:"classes"`
}

// Validate checks that every player class appears exactly once with usable stats.
func (t *Table) Validate() error {
	var errs []error
	if t.MaxLevel < 1 {
		errs = append(errs, fmt.Errorf("max_level must be >= 1, got %d", t.MaxLevel))
	}
	if t.Potions < 0 {
		errs = append(errs, fmt.Errorf("potions must be >= 0, got %d", t.Potions))
	}
	seen := make(map[combat.Archetype]bool, len(t.Classes))
	for _, r := range t.Classes {
		if !r.Archetype.IsPlayer() {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownClass, r.Archetype))
			continue
		}
		if seen[r.Archetype] {
			errs = append(errs, fmt.Errorf("duplicate class %q", r.Archetype))
		}
		seen[r.Archetype] = true
		if r.BaseHP < 1 {
			errs = append(errs, fmt.Errorf("%s: base_hp must be >= 1", r.Archetype))
		}
	}
	for _, a := range combat.PlayerArchetypes {
		if !seen[a] {
			errs = append(errs, fmt.Errorf("class %q missing from table", a))
		}
	}
	return errors.Join(errs...)
}

// Row returns the row for archetype a.
func (t *Table) Row(a combat.Archetype) (Row, error) {
	for _, r := range t.Classes {
		if r.Archetype == a {
			return r, nil
		}
	}
	return Row{}, fmt.Errorf("%w: %q", ErrUnknownClass, a)
}

// LoadTable parses a class table from YAML. Unknown fields are rejected.
//
// Postcondition: Returns a validated Table or a non-nil error.
func LoadTable(data []byte) (*Table, error) {
	var t Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parsing class table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validating class table: %w", err)
	}
	return &t, nil
}

// LoadFile reads a class table from path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return LoadTable(data)
}

// Default loads the embedded class table.
func Default() (*Table, error) {
	data, err := fs.ReadFile(content.FS, "classes.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded class table: %w", err)
	}
	return LoadTable(data)
}

// PlayerSpec is the player stat block a combat starts from.
type PlayerSpec struct {
	Class     combat.Archetype
	Level     int
	Name      string
	Equipment combat.Equipment
}

// NewBehavior returns a fresh behavior for class a.
func NewBehavior(a combat.Archetype) (combat.Behavior, error) {
	switch a {
	case combat.Warrior:
		return &Warrior{}, nil
	case combat.Rogue:
		return &Rogue{}, nil
	case combat.Mage:
		return &Mage{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, a)
	}
}

// NewPlayer builds a player combatant from spec, scaling the class row by level.
//
// Precondition: reg must be non-nil.
// Postcondition: Returns a full-health player, or an error wrapping
// ErrUnknownClass or ErrInvalidLevel.
func (t *Table) NewPlayer(spec PlayerSpec, reg *condition.Registry) (*combat.Combatant, error) {
	row, err := t.Row(spec.Class)
	if err != nil {
		return nil, err
	}
	if spec.Level < 1 || spec.Level > t.MaxLevel {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidLevel, spec.Level, t.MaxLevel)
	}
	behavior, err := NewBehavior(spec.Class)
	if err != nil {
		return nil, err
	}
	name := spec.Name
	if name == "" {
		name = row.Name
	}
	gained := spec.Level - 1
	moves := 2
	if spec.Level == 1 {
		moves = 1
	}
	return combat.New(combat.Spec{
		ID:             uuid.NewString(),
		Kind:           combat.KindPlayer,
		Name:           name,
		Archetype:      spec.Class,
		Level:          spec.Level,
		MaxHP:          row.BaseHP + gained*t.PerLevel.HP,
		BaseAttack:     row.BaseAttack + gained*t.PerLevel.Attack,
		Defense:        row.Defense + gained*t.PerLevel.Defense,
		BaseInitiative: row.Initiative + spec.Level*row.InitiativePerLevel,
		MovesPerTurn:   moves,
		Potions:        t.Potions,
		Equipment:      spec.Equipment,
	}, behavior, reg)
}

// tier maps a level onto the elite scaling steps: 0 at level 3 and below,
// 1 at level 4, 2 at level 5 and above.
func tier(level int) int {
	switch {
	case level >= 5:
		return 2
	case level == 4:
		return 1
	default:
		return 0
	}
}
