package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"todo_backend/internal/logging"
	"todo_backend/internal/model"
	"todo_backend/internal/repository"
)

// AdminService defines the unscoped operations reserved for admins
type AdminService interface {
	ListAll(ctx context.Context, id model.Identity, filters model.AdminTodoFilters) ([]model.Todo, error)
	DeleteAny(ctx context.Context, id model.Identity, todoID int64) error
	ExportCSV(ctx context.Context, id model.Identity, filters model.AdminTodoFilters) (*bytes.Buffer, error)
}

type adminService struct {
	store repository.Transactor
	log   logging.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(store repository.Transactor, log logging.Logger) AdminService {
	return &adminService{store: store, log: log}
}

func (s *adminService) authorize(ctx context.Context, id model.Identity) error {
	if !id.IsAdmin() {
		s.log.Warn(ctx, "admin operation denied", "user_id", id.UserID)
		return ErrForbidden
	}
	return nil
}

func (s *adminService) ListAll(ctx context.Context, id model.Identity, filters model.AdminTodoFilters) ([]model.Todo, error) {
	if err := s.authorize(ctx, id); err != nil {
		return nil, err
	}

	var todos []model.Todo
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		todos, err = repos.Todos().FindAll(ctx, filters)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get all todos for admin: %w", err)
	}
	return todos, nil
}

func (s *adminService) DeleteAny(ctx context.Context, id model.Identity, todoID int64) error {
	if err := s.authorize(ctx, id); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		return repos.Todos().Delete(ctx, todoID)
	})
	if err := mapTodoErr(err); err != nil {
		return err
	}
	s.log.Info(ctx, "admin deleted todo", "admin_id", id.UserID, "todo_id", todoID)
	return nil
}

// ExportCSV renders the filtered admin listing as CSV with a header row
func (s *adminService) ExportCSV(ctx context.Context, id model.Identity, filters model.AdminTodoFilters) (*bytes.Buffer, error) {
	todos, err := s.ListAll(ctx, id, filters)
	if err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	header := []string{"ID", "OwnerID", "Title", "Description", "Priority", "Complete", "CreatedAt", "UpdatedAt"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, t := range todos {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			strconv.Itoa(t.OwnerID),
			t.Title,
			t.Description,
			strconv.Itoa(t.Priority),
			strconv.FormatBool(t.Complete),
			t.CreatedAt.Format(time.RFC3339),
			t.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV writer: %w", err)
	}
	return buffer, nil
}
