package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orangecx/cxpipe/pkg/config"
)

// DB wraps the pgxpool.Pool used by the warehouse sink. Connections are
// created only here.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool from the warehouse config.
func New(cfg *config.Config) (*DB, error) {
	if cfg.Warehouse.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not configured")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Warehouse.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Warehouse.MaxConns)
	poolConfig.MinConns = int32(cfg.Warehouse.MinConns)
	poolConfig.MaxConnLifetime = cfg.Warehouse.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Warehouse.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
