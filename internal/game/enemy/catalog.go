// Package enemy builds arena enemies from the catalog and implements the
// Goblin, Knoll, Giant Lizard and Gladiator Warrior behaviors.
package enemy

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/content"
	"github.com/cory-johannsen/arena/internal/game/combat"
)

// Stages is the number of arena stages.
const Stages = 3

// ArchetypeRow holds the proportional multipliers and rewards for one enemy family.
type ArchetypeRow struct {
	Archetype combat.Archetype `yaml:"archetype"`
	// HPPct scales the player's max HP; StatPct scales attack, defense and initiative.
	HPPct   int `yaml:"hp_pct"`
	StatPct int `yaml:"stat_pct"`
	// Gold is indexed by stage - 1.
	Gold []int `yaml:"gold"`
	// XP is multiplied by the stage.
	XP int `yaml:"xp"`
}

// ProfileRow holds a difficulty profile's offensive scaling.
type ProfileRow struct {
	Profile       combat.Profile `yaml:"profile"`
	AttackPct     int            `yaml:"attack_pct"`
	InitiativePct int            `yaml:"initiative_pct"`
}

// AbilityDef describes one signature ability.
type AbilityDef struct {
	ID          combat.Cooldown `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Cooldown    int             `yaml:"cooldown"`
	Traits      []string        `yaml:"traits"`
}

// StatBonus raises stats by a percentage after proportional scaling.
type StatBonus struct {
	HPPct      int `yaml:"hp_pct"`
	AttackPct  int `yaml:"attack_pct"`
	DefensePct int `yaml:"defense_pct"`
}

// Dialogue holds the lines a boss speaks in each phase.
type Dialogue struct {
	Intro  []string `yaml:"intro"`
	Mid    []string `yaml:"mid"`
	Low    []string `yaml:"low"`
	Defeat []string `yaml:"defeat"`
}

// Entry is one enemy type in the catalog.
type Entry struct {
	Type        string           `yaml:"type"`
	Archetype   combat.Archetype `yaml:"archetype"`
	Title       string           `yaml:"title"`
	Names       []string         `yaml:"names"`
	Description string           `yaml:"description"`
	Flavor      []string         `yaml:"flavor"`
	Bonus       StatBonus        `yaml:"bonus"`
	Abilities   []AbilityDef     `yaml:"abilities"`
	// Reactions maps a player command to the lines the enemy may answer with.
	Reactions  map[string][]string `yaml:"reactions"`
	Loot       LootTable           `yaml:"loot"`
	UniqueLoot []string            `yaml:"unique_loot"`
	Dialogue   *Dialogue           `yaml:"dialogue"`
}

// Catalog is the full enemy data set.
type Catalog struct {
	// Variance is the +/- fraction applied to enemy damage rolls.
	Variance   float64        `yaml:"variance"`
	Archetypes []ArchetypeRow `yaml:"archetypes"`
	Profiles   []ProfileRow   `yaml:"profiles"`
	Enemies    []Entry        `yaml:"enemies"`
}

// Archetype returns the row for a.
func (c *Catalog) Archetype(a combat.Archetype) (ArchetypeRow, bool) {
	for _, r := range c.Archetypes {
		if r.Archetype == a {
			return r, true
		}
	}
	return ArchetypeRow{}, false
}

// Profile returns the row for p.
func (c *Catalog) Profile(p combat.Profile) (ProfileRow, bool) {
	for _, r := range c.Profiles {
		if r.Profile == p {
			return r, true
		}
	}
	return ProfileRow{}, false
}

// Entry returns the catalog entry for enemy type t.
func (c *Catalog) Entry(t string) (*Entry, bool) {
	for i := range c.Enemies {
		if c.Enemies[i].Type == t {
			return &c.Enemies[i], true
		}
	}
	return nil, false
}

// Types lists the enemy types in catalog order.
func (c *Catalog) Types() []string {
	out := make([]string, 0, len(c.Enemies))
	for _, e := range c.Enemies {
		out = append(out, e.Type)
	}
	return out
}

// Validate checks the catalog against the closed archetype, profile, cooldown,
// trait and command sets, and checks every type has a behavior.
//
// Postcondition: Returns nil iff every reference resolves; all violations are joined.
func (c *Catalog) Validate() error {
	var errs []error
	if c.Variance < 0 || c.Variance >= 1 {
		errs = append(errs, fmt.Errorf("variance must be in [0, 1), got %v", c.Variance))
	}
	for _, a := range combat.EnemyArchetypes {
		r, ok := c.Archetype(a)
		if !ok {
			errs = append(errs, fmt.Errorf("archetype %q missing", a))
			continue
		}
		if len(r.Gold) != Stages {
			errs = append(errs, fmt.Errorf("archetype %q: gold needs %d stages, got %d", a, Stages, len(r.Gold)))
		}
		if r.HPPct < 1 || r.StatPct < 0 {
			errs = append(errs, fmt.Errorf("archetype %q: hp_pct must be >= 1 and stat_pct >= 0", a))
		}
	}
	for _, r := range c.Archetypes {
		if !r.Archetype.IsEnemy() {
			errs = append(errs, fmt.Errorf("%q is not an enemy archetype", r.Archetype))
		}
	}
	for _, p := range []combat.Profile{combat.ProfileNormal, combat.ProfileAggressive} {
		if _, ok := c.Profile(p); !ok {
			errs = append(errs, fmt.Errorf("profile %q missing", p))
		}
	}
	seen := make(map[string]bool, len(c.Enemies))
	for i := range c.Enemies {
		e := &c.Enemies[i]
		if err := e.validate(); err != nil {
			errs = append(errs, fmt.Errorf("enemy %q: %w", e.Type, err))
		}
		if seen[e.Type] {
			errs = append(errs, fmt.Errorf("duplicate enemy %q", e.Type))
		}
		seen[e.Type] = true
	}
	return errors.Join(errs...)
}

func (e *Entry) validate() error {
	var errs []error
	if e.Type == "" {
		errs = append(errs, errors.New("type must not be empty"))
	}
	if !e.Archetype.IsEnemy() {
		errs = append(errs, fmt.Errorf("%q is not an enemy archetype", e.Archetype))
	}
	if len(e.Names) == 0 {
		errs = append(errs, errors.New("names must not be empty"))
	}
	for _, a := range e.Abilities {
		if !a.ID.Valid() {
			errs = append(errs, fmt.Errorf("unknown ability %q", a.ID))
		}
		if a.Cooldown < 1 {
			errs = append(errs, fmt.Errorf("ability %q: cooldown must be >= 1", a.ID))
		}
		for _, t := range a.Traits {
			if _, err := combat.ParseTrait(t); err != nil {
				errs = append(errs, fmt.Errorf("ability %q: %w", a.ID, err))
			}
		}
	}
	for cmd := range e.Reactions {
		if _, err := combat.ParseCommand(cmd); err != nil {
			errs = append(errs, fmt.Errorf("reactions: %w", err))
		}
	}
	if err := e.Loot.Validate(); err != nil {
		errs = append(errs, err)
	}
	if k, ok := kinds[e.Type]; !ok {
		errs = append(errs, fmt.Errorf("%w: no behavior for %q", ErrUnknownEnemy, e.Type))
	} else {
		for _, id := range k.abilities {
			if !e.hasAbility(id) {
				errs = append(errs, fmt.Errorf("ability %q missing", id))
			}
		}
	}
	return errors.Join(errs...)
}

func (e *Entry) hasAbility(id combat.Cooldown) bool {
	for _, a := range e.Abilities {
		if a.ID == id {
			return true
		}
	}
	return false
}

// actions converts the entry's ability definitions into selectable actions.
func (e *Entry) actions() []combat.Action {
	out := make([]combat.Action, 0, len(e.Abilities))
	for _, a := range e.Abilities {
		var traits combat.Trait
		for _, name := range a.Traits {
			t, _ := combat.ParseTrait(name)
			traits |= t
		}
		out = append(out, combat.Action{
			Kind:          combat.ActionAbility,
			Ability:       a.ID,
			Name:          string(a.ID),
			Traits:        traits,
			CooldownTurns: a.Cooldown,
		})
	}
	return out
}

// LoadCatalog parses and validates an enemy catalog. Unknown fields are rejected.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parsing enemy catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating enemy catalog: %w", err)
	}
	return &c, nil
}

// LoadCatalogFile reads an enemy catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return LoadCatalog(data)
}

// DefaultCatalog loads the embedded enemy catalog.
func DefaultCatalog() (*Catalog, error) {
	data, err := fs.ReadFile(content.FS, "enemies.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded enemy catalog: %w", err)
	}
	return LoadCatalog(data)
}
