package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo_backend/internal/model"

	"github.com/jackc/pgx/v5"
)

// TodoRepository defines operations for todo data
type TodoRepository interface {
	Create(ctx context.Context, todo *model.Todo) error
	FindByIDAndOwner(ctx context.Context, id int64, ownerID int) (*model.Todo, error)
	FindByOwner(ctx context.Context, ownerID int) ([]model.Todo, error)
	Update(ctx context.Context, todo *model.Todo) error
	DeleteByIDAndOwner(ctx context.Context, id int64, ownerID int) error

	// Unscoped, admin only
	FindAll(ctx context.Context, filters model.AdminTodoFilters) ([]model.Todo, error)
	Delete(ctx context.Context, id int64) error
}

type todoRepository struct {
	db DBTX
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db DBTX) TodoRepository {
	return &todoRepository{db: db}
}

const todoColumns = `id, title, description, priority, complete, owner_id, created_at, updated_at`

func scanTodo(row pgx.Row, t *model.Todo) error {
	return row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Complete, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
}

func collectTodos(rows pgx.Rows) ([]model.Todo, error) {
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		var t model.Todo
		if err := scanTodo(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan todo row: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todo rows: %w", err)
	}
	return todos, nil
}

// Create inserts a new todo into the database
func (r *todoRepository) Create(ctx context.Context, t *model.Todo) error {
	sql := `INSERT INTO todos (title, description, priority, complete, owner_id)
            VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, t.Title, t.Description, t.Priority, t.Complete, t.OwnerID).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// FindByIDAndOwner retrieves a todo only if ownerID owns it. Missing or foreign rows are (nil, nil).
func (r *todoRepository) FindByIDAndOwner(ctx context.Context, id int64, ownerID int) (*model.Todo, error) {
	t := &model.Todo{}
	sql := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND owner_id = $2`
	if err := scanTodo(r.db.QueryRow(ctx, sql, id, ownerID), t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find todo by ID: %w", err)
	}
	return t, nil
}

// FindByOwner retrieves every todo of one user
func (r *todoRepository) FindByOwner(ctx context.Context, ownerID int) ([]model.Todo, error) {
	sql := `SELECT ` + todoColumns + ` FROM todos WHERE owner_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, sql, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos by owner: %w", err)
	}
	return collectTodos(rows)
}

// Update overwrites the mutable fields of a todo owned by t.OwnerID
func (r *todoRepository) Update(ctx context.Context, t *model.Todo) error {
	sql := `UPDATE todos
            SET title = $1, description = $2, priority = $3, complete = $4, updated_at = NOW()
            WHERE id = $5 AND owner_id = $6 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql, t.Title, t.Description, t.Priority, t.Complete, t.ID, t.OwnerID).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("todo %d: %w", t.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return nil
}

// DeleteByIDAndOwner removes a todo owned by ownerID
func (r *todoRepository) DeleteByIDAndOwner(ctx context.Context, id int64, ownerID int) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	return nil
}

// FindAll retrieves todos of every user with optional filters
func (r *todoRepository) FindAll(ctx context.Context, filters model.AdminTodoFilters) ([]model.Todo, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + todoColumns + ` FROM todos`)

	args := []interface{}{}
	var conditions []string

	if filters.OwnerID != nil {
		args = append(args, *filters.OwnerID)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filters.Complete != nil {
		args = append(args, *filters.Complete)
		conditions = append(conditions, fmt.Sprintf("complete = $%d", len(args)))
	}
	if filters.Priority != nil {
		args = append(args, *filters.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY id")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query all todos: %w", err)
	}
	return collectTodos(rows)
}

// Delete removes any todo by id
func (r *todoRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	return nil
}
