package service

import (
	"context"
	"errors"
	"fmt"

	"todo_backend/internal/model"
	"todo_backend/internal/repository"
)

// TodoService defines the owner scoped todo operations
type TodoService interface {
	List(ctx context.Context, id model.Identity) ([]model.Todo, error)
	Get(ctx context.Context, id model.Identity, todoID int64) (*model.Todo, error)
	Create(ctx context.Context, id model.Identity, req model.CreateTodoRequest) (*model.Todo, error)
	Update(ctx context.Context, id model.Identity, todoID int64, req model.UpdateTodoRequest) error
	Delete(ctx context.Context, id model.Identity, todoID int64) error
}

type todoService struct {
	store repository.Transactor
}

// NewTodoService creates a new TodoService
func NewTodoService(store repository.Transactor) TodoService {
	return &todoService{store: store}
}

func (s *todoService) List(ctx context.Context, id model.Identity) ([]model.Todo, error) {
	var todos []model.Todo
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		todos, err = repos.Todos().FindByOwner(ctx, id.UserID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Get returns ErrTodoNotFound both for missing todos and for todos of other users
func (s *todoService) Get(ctx context.Context, id model.Identity, todoID int64) (*model.Todo, error) {
	var todo *model.Todo
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		todo, err = repos.Todos().FindByIDAndOwner(ctx, todoID, id.UserID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

func (s *todoService) Create(ctx context.Context, id model.Identity, req model.CreateTodoRequest) (*model.Todo, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	todo := &model.Todo{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		OwnerID:     id.UserID,
	}
	if req.Complete != nil {
		todo.Complete = *req.Complete
	}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		return repos.Todos().Create(ctx, todo)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// Update merges req into the stored todo. Title, description and priority
// change only when present; complete is always written.
func (s *todoService) Update(ctx context.Context, id model.Identity, todoID int64, req model.UpdateTodoRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		todo, err := repos.Todos().FindByIDAndOwner(ctx, todoID, id.UserID)
		if err != nil {
			return err
		}
		if todo == nil {
			return ErrTodoNotFound
		}

		if req.Title != nil {
			todo.Title = *req.Title
		}
		if req.Description != nil {
			todo.Description = *req.Description
		}
		if req.Priority != nil {
			todo.Priority = *req.Priority
		}
		todo.Complete = req.Complete != nil && *req.Complete

		return repos.Todos().Update(ctx, todo)
	})
	return mapTodoErr(err)
}

func (s *todoService) Delete(ctx context.Context, id model.Identity, todoID int64) error {
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		return repos.Todos().DeleteByIDAndOwner(ctx, todoID, id.UserID)
	})
	return mapTodoErr(err)
}

func mapTodoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTodoNotFound
	}
	return err
}
