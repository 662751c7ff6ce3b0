// Package postgres opens the two PostgreSQL handles the server needs: a pgx
// pool for the submission archive and a database/sql handle for the audit
// outbox, which runs inside tx.Runner transactions.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"caslkey/internal/platform/config"
)

// Handles bundles both connections to one database.
type Handles struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
}

// Open connects and pings both handles. Returns nil if no DSN is configured.
func Open(ctx context.Context, cfg config.PostgresConfig) (*Handles, error) {
	if cfg.DSN == "" {
		return nil, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if err := db.PingContext(ctx); err != nil {
		pool.Close()
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return &Handles{Pool: pool, DB: db}, nil
}

// Health pings the pool.
func (h *Handles) Health(ctx context.Context) error {
	return h.Pool.Ping(ctx)
}

func (h *Handles) Close() error {
	h.Pool.Close()
	return h.DB.Close()
}
