package ai

import (
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Base scoring bonuses shared by every enemy.
const (
	finishBonus       = 30
	lowDefendBonus    = 25
	heavyWindowBonus  = 20
	aggressiveBonus   = 10
	aggressivePenalty = 15
	jitterRange       = 10
)

// ErrNoAction is returned when the enemy has no legal action.
var ErrNoAction = errors.New("ai: no legal action")

// Tactician is implemented by enemy behaviors to take part in scoring.
type Tactician interface {
	// Type is the enemy's catalog key, used to look up strategy refinements.
	Type() string
	Profile() combat.Profile
	// Bonus returns the enemy's own priority bonus for action.
	Bonus(c *combat.Combatant, action combat.Action, ctx Context) int
}

// Score is one candidate's final priority.
type Score struct {
	Action combat.Action
	Score  float64
}

// Decision is the model's choice for one enemy turn.
type Decision struct {
	Action  combat.Action
	Scores  []Score
	Context Context
	// NoTarget is set when the player could not be targeted, restricting the
	// candidates to actions that need no target.
	NoTarget bool
}

// Model scores an enemy's legal actions and picks the strictly highest.
//
// Invariant: strategies and src are non-nil.
type Model struct {
	strategies *Strategies
	src        dice.Source
	logger     *zap.Logger
}

// NewModel creates a decision model. A nil logger is replaced by a no-op logger.
//
// Precondition: strategies and src must not be nil.
func NewModel(strategies *Strategies, src dice.Source, logger *zap.Logger) *Model {
	if strategies == nil || src == nil {
		panic("ai.NewModel: strategies and src must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{strategies: strategies, src: src, logger: logger}
}

// Decide picks enemy's action against player.
//
// Candidates are enumerated in the enemy's action order and scored once each;
// a later candidate replaces the current best only with a strictly higher score.
//
// Precondition: enemy and player must be alive.
// Postcondition: the returned action satisfies enemy.CanUse, or ErrNoAction is returned.
func (m *Model) Decide(enemy, player *combat.Combatant) (Decision, error) {
	if !enemy.IsAlive() || !player.IsAlive() {
		panic("ai.Model.Decide precondition violated: both combatants must be alive")
	}
	ctx := BuildContext(enemy, player)
	enemyType := ""
	tactician, hasTactics := enemy.Behavior().(Tactician)
	if hasTactics {
		ctx.Profile = tactician.Profile()
		enemyType = tactician.Type()
	}
	ctx.Tags = m.strategies.TagsFor(enemyType, ctx)

	d := Decision{Context: ctx, NoTarget: ctx.PlayerUntargetable}
	best := -1
	for _, action := range enemy.Actions() {
		if !enemy.CanUse(action) {
			continue
		}
		if ctx.PlayerUntargetable && action.Traits.Has(combat.TraitTargeted) {
			continue
		}
		score := float64(m.baseScore(action, ctx))
		if hasTactics {
			score += float64(tactician.Bonus(enemy, action, ctx))
		}
		score += m.src.Float64() * jitterRange
		d.Scores = append(d.Scores, Score{Action: action, Score: score})
		if best < 0 || score > d.Scores[best].Score {
			best = len(d.Scores) - 1
		}
	}
	if best < 0 {
		return d, ErrNoAction
	}
	d.Action = d.Scores[best].Action
	m.logger.Debug("enemy decision",
		zap.String("enemy", enemy.Name),
		zap.String("action", d.Action.String()),
		zap.Float64("score", d.Scores[best].Score),
		zap.Int("candidates", len(d.Scores)),
		zap.Bool("no_target", d.NoTarget),
	)
	return d, nil
}

func (m *Model) baseScore(action combat.Action, ctx Context) int {
	score := 0
	if ctx.PlayerLow && action.Kind == combat.ActionLight {
		score += finishBonus
	}
	if ctx.EnemyLow && action.Kind == combat.ActionDefend {
		score += lowDefendBonus
	}
	if ctx.PlayerHeavyOnCooldown && action.Kind == combat.ActionHeavy {
		score += heavyWindowBonus
	}
	score += m.strategies.Bonus(ctx.Tags, action.Traits)
	if ctx.Profile == combat.ProfileAggressive {
		if action.Traits.Has(combat.TraitDamaging) {
			score += aggressiveBonus
		}
		if action.Kind == combat.ActionDefend {
			score -= aggressivePenalty
		}
	}
	return score
}
