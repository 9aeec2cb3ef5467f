package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PgxPool is the part of *pgxpool.Pool the store needs
type PgxPool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

type pgRepositories struct {
	users UserRepository
	todos TodoRepository
}

func (r *pgRepositories) Users() UserRepository { return r.users }
func (r *pgRepositories) Todos() TodoRepository { return r.todos }

// PostgresStore hands out repositories bound to a per-call transaction
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore creates a Transactor backed by pool
func NewPostgresStore(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// WithTx begins a transaction, runs fn with repositories bound to it, then
// commits on success or rolls back on error/panic. Panics are rethrown.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(repos Repositories) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if cerr := tx.Commit(ctx); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	return fn(&pgRepositories{
		users: NewUserRepository(tx),
		todos: NewTodoRepository(tx),
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
