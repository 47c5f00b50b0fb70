package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, connStr string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate creates the result tables if they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS grading_results (
    submission_id      TEXT PRIMARY KEY,
    self_grade         INT NOT NULL,
    final_score        DOUBLE PRECISION NOT NULL,
    criticism_multiplier DOUBLE PRECISION NOT NULL,
    evaluations        JSONB NOT NULL,
    breakdown          JSONB NOT NULL,
    comparison_message TEXT NOT NULL,
    graded_at          TIMESTAMPTZ NOT NULL,
    processing_ms      BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_grading_results_graded_at
    ON grading_results (graded_at DESC);
`
