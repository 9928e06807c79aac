// Package main provides the batch simulator that plays scripted arena combats
// and reports the outcome distribution for one matchup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/arena"
	"github.com/cory-johannsen/arena/internal/game/class"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/enemy"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/sim"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults plus ARENA_* environment")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		cfg config.Config
		err error
	)
	if *configPath == "" {
		cfg, err = config.LoadDefaults()
	} else {
		cfg, err = config.Load(*configPath)
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	content, err := sim.LoadContent(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}

	strategy, ok := arena.Strategies[cfg.Simulation.Strategy]
	if !ok {
		logger.Fatal("unknown strategy", zap.String("strategy", cfg.Simulation.Strategy))
	}
	sc := cfg.Simulation
	m := sim.Matchup{
		Player: class.PlayerSpec{
			Class: combat.Archetype(sc.PlayerClass),
			Level: sc.PlayerLevel,
			Equipment: combat.Equipment{
				WeaponBonus: sc.WeaponBonus,
				ArmorBonus:  sc.ArmorBonus,
			},
		},
		Enemy:   sc.Enemy,
		Stage:   sc.Stage,
		Profile: combat.Profile(sc.Profile),
	}
	opts := sim.Options{
		Runs:        sc.Runs,
		Workers:     sc.Workers,
		Strategy:    strategy,
		TurnCeiling: cfg.Combat.TurnCeiling,
		Seed:        cfg.Combat.Seed,
	}

	var repo *postgres.CombatRepository
	if sc.Archive {
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("archive unavailable", zap.Error(err))
		}
		repo = pool.Combats()
		opts.OnFinish = func(ctx context.Context, s *arena.Session, desc enemy.Descriptor) error {
			rec, err := postgres.RecordFrom(s, desc)
			if err != nil {
				return err
			}
			_, err = repo.Save(ctx, rec)
			return err
		}
	}

	logger.Info("starting simulation",
		zap.String("class", sc.PlayerClass),
		zap.Int("level", sc.PlayerLevel),
		zap.String("enemy", sc.Enemy),
		zap.Int("stage", sc.Stage),
		zap.String("strategy", sc.Strategy),
		zap.Int("runs", sc.Runs),
		zap.Int("workers", sc.Workers),
	)

	sum, err := sim.NewRunner(content, logger).Run(ctx, m, opts)
	if err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}

	fmt.Fprintf(os.Stdout, "%s L%d vs %s (stage %d, %s): %d runs\n",
		sc.PlayerClass, sc.PlayerLevel, sc.Enemy, sc.Stage, sc.Profile, sum.Runs)
	fmt.Fprintf(os.Stdout, "  victories %d (%.1f%%)  defeats %d  draws %d\n",
		sum.Victories, 100*sum.WinRate(), sum.Defeats, sum.Draws)
	fmt.Fprintf(os.Stdout, "  average turns %.1f  gold %d  xp %d\n", sum.AverageTurns(), sum.Gold, sum.XP)

	if repo != nil {
		tally, err := repo.Tally(ctx, m.Player.Class, m.Enemy)
		if err != nil {
			logger.Fatal("tallying archive", zap.Error(err))
		}
		fmt.Fprintf(os.Stdout, "  archive: victories %d  defeats %d  draws %d\n",
			tally[arena.ResultVictory], tally[arena.ResultDefeat], tally[arena.ResultDraw])
	}
	logger.Info("simulation finished", zap.Duration("elapsed", time.Since(start)))
}
