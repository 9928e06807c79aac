package enemy

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

var (
	// ErrUnknownEnemy is returned for an enemy type with no catalog entry or behavior.
	ErrUnknownEnemy = errors.New("enemy: unknown enemy type")
	// ErrInvalidStage is returned for a stage outside [1, Stages].
	ErrInvalidStage = errors.New("enemy: invalid stage")
	// ErrUnknownProfile is returned for a difficulty profile missing from the catalog.
	ErrUnknownProfile = errors.New("enemy: unknown profile")
)

// PlayerStats is the slice of the player's stat block enemies scale from.
type PlayerStats struct {
	MaxHP      int `json:"max_hp"`
	Attack     int `json:"attack"`
	Defense    int `json:"defense"`
	Initiative int `json:"initiative"`
	Level      int `json:"level"`
}

// StatsOf captures p's current stats, equipment included.
func StatsOf(p *combat.Combatant) PlayerStats {
	return PlayerStats{
		MaxHP:      p.MaxHP,
		Attack:     p.Attack(),
		Defense:    p.TotalDefense(),
		Initiative: p.BaseInitiative,
		Level:      p.Level,
	}
}

// Descriptor fully determines an enemy's stats; together with a dice source
// it reproduces the enemy.
type Descriptor struct {
	Type    string         `json:"type"`
	Stage   int            `json:"stage"`
	Profile combat.Profile `json:"profile"`
	Player  PlayerStats    `json:"player"`
}

// Factory creates enemies scaled to the player.
//
// Invariant: cat has passed Validate and reg is non-nil.
type Factory struct {
	cat    *Catalog
	reg    *condition.Registry
	logger *zap.Logger
}

// NewFactory creates a Factory. A nil logger is replaced by a no-op logger.
//
// Precondition: cat and reg must not be nil.
func NewFactory(cat *Catalog, reg *condition.Registry, logger *zap.Logger) *Factory {
	if cat == nil || reg == nil {
		panic("enemy.NewFactory: cat and reg must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{cat: cat, reg: reg, logger: logger}
}

// Catalog returns the factory's catalog.
func (f *Factory) Catalog() *Catalog { return f.cat }

// Create builds the enemy desc describes.
//
// Stats derive from the player's by the archetype's percentages, then the
// profile's, then the entry's bonus; every step floors. Rewards and loot are
// rolled here with src.
//
// Postcondition: the enemy is at full health with MaxHP >= 1, one move per
// turn, no potions, and the player's level.
func (f *Factory) Create(desc Descriptor, src dice.Source) (*combat.Combatant, error) {
	entry, ok := f.cat.Entry(desc.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnemy, desc.Type)
	}
	k, ok := kinds[desc.Type]
	if !ok {
		return nil, fmt.Errorf("%w: no behavior for %q", ErrUnknownEnemy, desc.Type)
	}
	if desc.Stage < 1 || desc.Stage > Stages {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidStage, desc.Stage, Stages)
	}
	prof, ok := f.cat.Profile(desc.Profile)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, desc.Profile)
	}
	row, ok := f.cat.Archetype(entry.Archetype)
	if !ok {
		return nil, fmt.Errorf("%w: archetype %q has no catalog row", ErrUnknownEnemy, entry.Archetype)
	}
	if desc.Player.Level < 1 {
		return nil, fmt.Errorf("enemy: player level must be >= 1, got %d", desc.Player.Level)
	}

	p := desc.Player
	hp := max(1, combat.Pct(p.MaxHP, row.HPPct))
	atk := combat.Pct(p.Attack, row.StatPct)
	def := combat.Pct(p.Defense, row.StatPct)
	initiative := combat.Pct(p.Initiative, row.StatPct)

	atk = combat.Pct(atk, prof.AttackPct)
	initiative = combat.Pct(initiative, prof.InitiativePct)

	hp += combat.Pct(hp, entry.Bonus.HPPct)
	atk += combat.Pct(atk, entry.Bonus.AttackPct)
	def += combat.Pct(def, entry.Bonus.DefensePct)

	b := k.build(base{
		entry:    entry,
		profile:  desc.Profile,
		variance: f.cat.Variance,
		actions:  entry.actions(),
		Reward:   f.rewards(entry, row, desc.Stage, src),
	})
	c, err := combat.New(combat.Spec{
		ID:             uuid.New().String(),
		Kind:           combat.KindEnemy,
		Name:           pick(entry.Names, src),
		Archetype:      entry.Archetype,
		Level:          p.Level,
		MaxHP:          hp,
		BaseAttack:     atk,
		Defense:        def,
		BaseInitiative: initiative,
		MovesPerTurn:   1,
	}, b, f.reg)
	if err != nil {
		return nil, fmt.Errorf("enemy: creating %s: %w", desc.Type, err)
	}
	f.logger.Debug("enemy created",
		zap.String("type", desc.Type),
		zap.String("name", c.Name),
		zap.Int("stage", desc.Stage),
		zap.String("profile", string(desc.Profile)),
		zap.Int("hp", hp),
		zap.Int("attack", atk),
		zap.Int("defense", def),
		zap.Int("initiative", initiative),
	)
	return c, nil
}

// rewards rolls the stage's rewards. A gladiator also grants half its XP again
// as a bonus, one prestige, and one piece of unique loot.
func (f *Factory) rewards(entry *Entry, row ArchetypeRow, stage int, src dice.Source) Rewards {
	r := Rewards{
		Gold: row.Gold[stage-1],
		XP:   row.XP * stage,
		Loot: GenerateLoot(entry.Loot, src),
	}
	if entry.Archetype == combat.Gladiator {
		r.BonusXP = r.XP / 2
		r.Prestige = 1
	}
	r.UniqueLoot = pick(entry.UniqueLoot, src)
	return r
}
