// Package ai implements the enemy decision model: a per-turn context record,
// counter-strategy tables keyed by player class, and priority scoring over the
// enemy's currently legal actions.
package ai

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/content"
	"github.com/cory-johannsen/arena/internal/game/combat"
)

// Tag is a qualitative counter-strategy bias.
type Tag string

const (
	PreferStatusEffects      Tag = "prefer_status_effects"
	PreferDirectDamage       Tag = "prefer_direct_damage"
	PrioritizeControl        Tag = "prioritize_control"
	PreferInterruption       Tag = "prefer_interruption"
	PrioritizeAggression     Tag = "prioritize_aggression"
	AvoidDirectConfrontation Tag = "avoid_direct_confrontation"
	Outlast                  Tag = "outlast"
	MirrorMatch              Tag = "mirror_match"
	Overwhelm                Tag = "overwhelm"
)

var knownTags = []Tag{
	PreferStatusEffects, PreferDirectDamage, PrioritizeControl, PreferInterruption,
	PrioritizeAggression, AvoidDirectConfrontation, Outlast, MirrorMatch, Overwhelm,
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool { return slices.Contains(knownTags, t) }

// Condition gates a conditional counter on the decision context.
type Condition string

const (
	Always        Condition = ""
	EnemyLow      Condition = "enemy_low"
	EnemyHealthy  Condition = "enemy_healthy"
	PlayerLow     Condition = "player_low"
	PlayerHealthy Condition = "player_healthy"
)

// Holds reports whether c is satisfied by ctx.
func (c Condition) Holds(ctx Context) bool {
	switch c {
	case Always:
		return true
	case EnemyLow:
		return ctx.EnemyLow
	case EnemyHealthy:
		return ctx.EnemyHealthy
	case PlayerLow:
		return ctx.PlayerLow
	case PlayerHealthy:
		return ctx.PlayerHealthy
	default:
		return false
	}
}

func (c Condition) valid() bool {
	switch c {
	case Always, EnemyLow, EnemyHealthy, PlayerLow, PlayerHealthy:
		return true
	}
	return false
}

// Counter assigns tags to a player class, optionally only while When holds.
type Counter struct {
	Class combat.Archetype `yaml:"class"`
	When  Condition        `yaml:"when"`
	Tags  []Tag            `yaml:"tags"`
}

// Refinement adds an enemy type's own tags against a player class.
type Refinement struct {
	Enemy string           `yaml:"enemy"`
	Class combat.Archetype `yaml:"class"`
	Tags  []Tag            `yaml:"tags"`
}

// Rule awards Bonus to every action carrying Trait while Tag is in effect.
type Rule struct {
	Tag   Tag    `yaml:"tag"`
	Trait string `yaml:"trait"`
	Bonus int    `yaml:"bonus"`

	trait combat.Trait
}

// Strategies is the full counter-strategy table.
//
// Invariant: after Validate, every tag is known, every class is a player
// class, and every rule trait parses.
type Strategies struct {
	Counters    []Counter    `yaml:"counters"`
	Refinements []Refinement `yaml:"refinements"`
	Rules       []Rule       `yaml:"rules"`
}

// Validate checks all tags, classes, conditions and traits, resolving rule traits.
//
// Postcondition: nil return guarantees every reference is to a member of its closed set.
func (s *Strategies) Validate() error {
	var errs []error
	checkTags := func(where string, tags []Tag) {
		if len(tags) == 0 {
			errs = append(errs, fmt.Errorf("%s: tags must not be empty", where))
		}
		for _, t := range tags {
			if !t.Valid() {
				errs = append(errs, fmt.Errorf("%s: unknown tag %q", where, t))
			}
		}
	}
	for i, c := range s.Counters {
		where := fmt.Sprintf("counters[%d]", i)
		if !c.Class.IsPlayer() {
			errs = append(errs, fmt.Errorf("%s: %q is not a player class", where, c.Class))
		}
		if !c.When.valid() {
			errs = append(errs, fmt.Errorf("%s: unknown condition %q", where, c.When))
		}
		checkTags(where, c.Tags)
	}
	for i, r := range s.Refinements {
		where := fmt.Sprintf("refinements[%d]", i)
		if r.Enemy == "" {
			errs = append(errs, fmt.Errorf("%s: enemy must not be empty", where))
		}
		if !r.Class.IsPlayer() {
			errs = append(errs, fmt.Errorf("%s: %q is not a player class", where, r.Class))
		}
		checkTags(where, r.Tags)
	}
	for i := range s.Rules {
		r := &s.Rules[i]
		where := fmt.Sprintf("rules[%d]", i)
		if !r.Tag.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown tag %q", where, r.Tag))
		}
		t, err := combat.ParseTrait(r.Trait)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
		r.trait = t
	}
	return errors.Join(errs...)
}

// TagsFor resolves the tags an enemy of type enemyType adopts against ctx.PlayerClass.
//
// Postcondition: the result holds no duplicates and preserves table order.
func (s *Strategies) TagsFor(enemyType string, ctx Context) []Tag {
	var out []Tag
	add := func(tags []Tag) {
		for _, t := range tags {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	for _, c := range s.Counters {
		if c.Class == ctx.PlayerClass && c.When.Holds(ctx) {
			add(c.Tags)
		}
	}
	for _, r := range s.Refinements {
		if r.Enemy == enemyType && r.Class == ctx.PlayerClass {
			add(r.Tags)
		}
	}
	return out
}

// Bonus totals the rule bonuses tags award to an action with traits.
func (s *Strategies) Bonus(tags []Tag, traits combat.Trait) int {
	total := 0
	for _, r := range s.Rules {
		if r.trait != 0 && traits.Has(r.trait) && slices.Contains(tags, r.Tag) {
			total += r.Bonus
		}
	}
	return total
}

// LoadStrategies parses and validates a strategy table. Unknown fields are rejected.
func LoadStrategies(data []byte) (*Strategies, error) {
	var s Strategies
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("ai.LoadStrategies: parsing: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("ai.LoadStrategies: %w", err)
	}
	return &s, nil
}

// LoadStrategiesFile reads a strategy table from path.
func LoadStrategiesFile(path string) (*Strategies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadStrategiesFile: reading %q: %w", path, err)
	}
	return LoadStrategies(data)
}

// DefaultStrategies loads the embedded strategy table.
func DefaultStrategies() (*Strategies, error) {
	data, err := fs.ReadFile(content.FS, "strategies.yaml")
	if err != nil {
		return nil, fmt.Errorf("ai.DefaultStrategies: %w", err)
	}
	return LoadStrategies(data)
}
