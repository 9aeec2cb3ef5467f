package config

import (
	"context"
	"fmt"
	"time"

	"todo_backend/internal/logging"
	"todo_backend/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// ConnectDB establishes a connection pool to PostgreSQL, retrying while the server comes up
func ConnectDB(ctx context.Context, cfg DBConfig, log logging.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN())
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				log.Info(ctx, "connected to PostgreSQL", "host", cfg.Host, "db", cfg.Name)
				return pool, nil
			}
			pool.Close()
		}
		log.Warn(ctx, "failed to connect to database", "attempt", i+1, "max_attempts", maxRetries, "error", err, "retry_in", retryInterval)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// Migrate applies the embedded goose migrations through a database/sql view of the pool
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	return nil
}
