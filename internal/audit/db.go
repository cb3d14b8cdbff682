package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JonMunkholm/payroll/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// DB is an open history database: the pgx pool and a database/sql handle
// sharing its connections.
type DB struct {
	Pool *pgxpool.Pool
	SQL  *sql.DB
}

// PoolConfig turns the database settings into a pgxpool configuration.
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	return poolConfig, nil
}

// Open connects to the history database, verifies the connection and
// applies migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolConfig, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{Pool: pool, SQL: stdlib.OpenDBFromPool(pool)}
	if err := Migrate(ctx, db.SQL); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Store returns a Store using the database/sql handle.
func (d *DB) Store() *Store {
	return NewStore(d.SQL)
}

// Close releases the handle and the pool.
func (d *DB) Close() {
	_ = d.SQL.Close()
	d.Pool.Close()
}
