package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/arena/internal/game/arena"
	"github.com/cory-johannsen/arena/internal/game/class"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/enemy"
	"github.com/cory-johannsen/arena/internal/observability"
)

// Matchup is the player and enemy every combat in a batch is built from.
type Matchup struct {
	Player  class.PlayerSpec
	Enemy   string
	Stage   int
	Profile combat.Profile
}

// FinishFunc is called with every finished session, from the worker that ran it.
type FinishFunc func(ctx context.Context, s *arena.Session, desc enemy.Descriptor) error

// Options configures a batch.
type Options struct {
	Runs    int
	Workers int
	// Strategy picks every player action.
	Strategy    arena.Strategy
	TurnCeiling int
	// Seed makes run i use a seeded source with seed Seed+i; 0 selects the crypto source.
	Seed uint64
	// OnFinish, when set, is called after each combat; an error aborts the batch.
	OnFinish FinishFunc
}

// Summary aggregates a batch's outcomes.
type Summary struct {
	Runs      int `json:"runs"`
	Victories int `json:"victories"`
	Defeats   int `json:"defeats"`
	Draws     int `json:"draws"`
	Turns     int `json:"turns"`
	Gold      int `json:"gold"`
	XP        int `json:"xp"`
}

// WinRate returns the share of runs the player won.
func (s Summary) WinRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Victories) / float64(s.Runs)
}

// AverageTurns returns the mean number of rounds per combat.
func (s Summary) AverageTurns() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Turns) / float64(s.Runs)
}

func (s *Summary) add(sess *arena.Session) {
	s.Runs++
	s.Turns += sess.Turn()
	switch sess.Result() {
	case arena.ResultVictory:
		s.Victories++
	case arena.ResultDefeat:
		s.Defeats++
	case arena.ResultDraw:
		s.Draws++
	}
	if r, ok := sess.Rewards(); ok {
		s.Gold += r.Gold
		s.XP += r.TotalXP()
	}
}

// Runner plays batches of combats against shared content.
type Runner struct {
	content *Content
	factory *enemy.Factory
	engine  *arena.Engine
	logger  *zap.Logger
}

// NewRunner creates a Runner. A nil logger is replaced by a no-op logger.
//
// Precondition: c must not be nil.
func NewRunner(c *Content, logger *zap.Logger) *Runner {
	if c == nil {
		panic("sim.NewRunner: content must not be nil")
	}
	logger = observability.OrNop(logger)
	return &Runner{
		content: c,
		factory: enemy.NewFactory(c.Catalog, c.Conditions, logger),
		engine:  arena.NewEngine(),
		logger:  logger,
	}
}

// Active returns the number of combats currently in progress.
func (r *Runner) Active() int { return r.engine.Len() }

// Run plays opts.Runs combats of m across opts.Workers goroutines.
//
// Postcondition: on success Summary.Runs == opts.Runs; the first failing
// combat cancels the remaining ones and its error is returned.
func (r *Runner) Run(ctx context.Context, m Matchup, opts Options) (Summary, error) {
	if opts.Runs < 1 || opts.Workers < 1 {
		return Summary{}, fmt.Errorf("sim: runs and workers must be >= 1, got %d and %d", opts.Runs, opts.Workers)
	}
	if opts.Strategy == nil {
		return Summary{}, fmt.Errorf("sim: a strategy is required")
	}
	// Fail fast on a bad matchup before spawning workers.
	if _, err := r.content.Classes.NewPlayer(m.Player, r.content.Conditions); err != nil {
		return Summary{}, err
	}
	start := time.Now()

	var (
		mu    sync.Mutex
		total Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range opts.Runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, desc, err := r.play(m, opts, i)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			if opts.OnFinish != nil {
				if err := opts.OnFinish(gctx, s, desc); err != nil {
					return fmt.Errorf("run %d: %w", i, err)
				}
			}
			mu.Lock()
			total.add(s)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	r.logger.Info("simulation complete",
		zap.String("class", string(m.Player.Class)),
		zap.String("enemy", m.Enemy),
		zap.Int("runs", total.Runs),
		zap.Float64("win_rate", total.WinRate()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return total, nil
}

// play builds and fights one combat, registering it with the engine while it runs.
func (r *Runner) play(m Matchup, opts Options, i int) (*arena.Session, enemy.Descriptor, error) {
	src := dice.NewCryptoSource()
	if opts.Seed != 0 {
		src = dice.NewSeededSource(opts.Seed + uint64(i))
	}
	roller := dice.NewLoggedRoller(src, r.logger)
	p, err := r.content.Classes.NewPlayer(m.Player, r.content.Conditions)
	if err != nil {
		return nil, enemy.Descriptor{}, err
	}
	desc := enemy.Descriptor{Type: m.Enemy, Stage: m.Stage, Profile: m.Profile, Player: enemy.StatsOf(p)}
	e, err := r.factory.Create(desc, roller)
	if err != nil {
		return nil, desc, err
	}
	s, err := r.engine.Start(p, e, arena.Options{
		TurnCeiling: opts.TurnCeiling,
		Src:         roller,
		Strategies:  r.content.Strategies,
		Logger:      r.logger,
	})
	if err != nil {
		return nil, desc, err
	}
	defer r.engine.End(s.ID())

	if _, err := s.Simulate(opts.Strategy); err != nil {
		return nil, desc, err
	}
	observability.ForCombat(r.logger, s.ID(), p.Name, e.Name).Debug("combat finished",
		zap.String("result", string(s.Result())),
		zap.Int("turns", s.Turn()),
	)
	return s, desc, nil
}
