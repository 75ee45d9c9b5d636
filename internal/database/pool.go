package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool.Pool for raw-SQL read paths (audit, full-text search)
// that sit alongside the GORM-mapped write paths in ledger/workflow/registry.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new database pool from a connection string.
// Required in non-development mode: a pool sized 10-20 per §4.1's
// connection discipline.
func NewPool(ctx context.Context, connString string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.MaxConns < 10 {
		cfg.MaxConns = 20
	}
	if cfg.MinConns < 2 {
		cfg.MinConns = 2
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the database pool
func (p *Pool) Close() {
	p.Pool.Close()
}

// WithTx executes fn within a single pgx transaction, rolling back on any
// error it returns. Callers that mutate across ledger rows, usage events,
// and audit entries in the same operation must use this so that all three
// writes commit or roll back together (§4.3.3, §4.3.4, §4.4).
func (p *Pool) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := p.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
