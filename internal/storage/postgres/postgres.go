// Package postgres archives finished arena combats in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/observability"
)

// Pool owns the archive's connection pool.
type Pool struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPool connects to the archive database described by cfg.
//
// Precondition: cfg passed config validation.
// Postcondition: Returns a pinged Pool or a non-nil error; a nil logger is
// replaced by a no-op logger.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	logger = observability.OrNop(logger).With(
		zap.String("db_host", cfg.Host),
		zap.String("db_name", cfg.Name),
	)

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	logger.Info("archive database connected", zap.Int32("max_conns", cfg.MaxConns))
	return &Pool{pool: pool, logger: logger}, nil
}

// Health pings the database, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		p.logger.Warn("archive health check failed", zap.Error(err))
		return fmt.Errorf("postgres: health check: %w", err)
	}
	return nil
}

// Combats returns the combat archive repository on this pool.
func (p *Pool) Combats() *CombatRepository {
	return NewCombatRepository(p.pool)
}

// Close releases every connection.
func (p *Pool) Close() {
	p.pool.Close()
	p.logger.Debug("archive database closed")
}

// DB exposes the raw pool for repositories and tests.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
