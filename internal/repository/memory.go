package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"todo_backend/internal/model"
)

// MemoryStore is a process-local Transactor used for local runs (STORAGE=memory)
// and tests. Transactions are serialized and rolled back by restoring a snapshot.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[int]model.User
	todos      map[int64]model.Todo
	nextUserID int
	nextTodoID int64
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int]model.User),
		todos:      make(map[int64]model.Todo),
		nextUserID: 1,
		nextTodoID: 1,
		now:        time.Now,
	}
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(repos Repositories) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, todos := maps.Clone(s.users), maps.Clone(s.todos)
	nextUserID, nextTodoID := s.nextUserID, s.nextTodoID
	restore := func() {
		s.users, s.todos = users, todos
		s.nextUserID, s.nextTodoID = nextUserID, nextTodoID
	}

	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
		if err != nil {
			restore()
		}
	}()

	return fn(memoryRepositories{s})
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

type memoryRepositories struct {
	s *MemoryStore
}

func (r memoryRepositories) Users() UserRepository { return memoryUsers{r.s} }
func (r memoryRepositories) Todos() TodoRepository { return memoryTodos{r.s} }

// memoryUsers and memoryTodos run with s.mu already held by WithTx.
type memoryUsers struct {
	s *MemoryStore
}

func (r memoryUsers) Create(ctx context.Context, user *model.User) error {
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return fmt.Errorf("failed to create user: %w", ErrDuplicate)
		}
	}
	user.ID = r.s.nextUserID
	user.CreatedAt = r.s.now()
	r.s.nextUserID++
	r.s.users[user.ID] = *user
	return nil
}

func (r memoryUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memoryUsers) FindByID(ctx context.Context, id int) (*model.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memoryUsers) UpdatePasswordHash(ctx context.Context, id int, passwordHash string) error {
	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	u.PasswordHash = passwordHash
	r.s.users[id] = u
	return nil
}

func (r memoryUsers) UpdatePhoneNumber(ctx context.Context, id int, phoneNumber string) error {
	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	u.PhoneNumber = &phoneNumber
	r.s.users[id] = u
	return nil
}

type memoryTodos struct {
	s *MemoryStore
}

func (r memoryTodos) Create(ctx context.Context, t *model.Todo) error {
	if _, ok := r.s.users[t.OwnerID]; !ok {
		return fmt.Errorf("failed to create todo: owner %d does not exist", t.OwnerID)
	}
	now := r.s.now()
	t.ID = r.s.nextTodoID
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.nextTodoID++
	r.s.todos[t.ID] = *t
	return nil
}

func (r memoryTodos) FindByIDAndOwner(ctx context.Context, id int64, ownerID int) (*model.Todo, error) {
	t, ok := r.s.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, nil
	}
	return &t, nil
}

func (r memoryTodos) FindByOwner(ctx context.Context, ownerID int) ([]model.Todo, error) {
	return r.collect(func(t model.Todo) bool { return t.OwnerID == ownerID }), nil
}

func (r memoryTodos) Update(ctx context.Context, t *model.Todo) error {
	stored, ok := r.s.todos[t.ID]
	if !ok || stored.OwnerID != t.OwnerID {
		return fmt.Errorf("todo %d: %w", t.ID, ErrNotFound)
	}
	t.CreatedAt = stored.CreatedAt
	t.UpdatedAt = r.s.now()
	r.s.todos[t.ID] = *t
	return nil
}

func (r memoryTodos) DeleteByIDAndOwner(ctx context.Context, id int64, ownerID int) error {
	t, ok := r.s.todos[id]
	if !ok || t.OwnerID != ownerID {
		return fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	delete(r.s.todos, id)
	return nil
}

func (r memoryTodos) FindAll(ctx context.Context, filters model.AdminTodoFilters) ([]model.Todo, error) {
	return r.collect(func(t model.Todo) bool {
		if filters.OwnerID != nil && t.OwnerID != *filters.OwnerID {
			return false
		}
		if filters.Complete != nil && t.Complete != *filters.Complete {
			return false
		}
		if filters.Priority != nil && t.Priority != *filters.Priority {
			return false
		}
		return true
	}), nil
}

func (r memoryTodos) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.todos[id]; !ok {
		return fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	delete(r.s.todos, id)
	return nil
}

func (r memoryTodos) collect(keep func(model.Todo) bool) []model.Todo {
	ids := slices.Sorted(maps.Keys(r.s.todos))
	todos := []model.Todo{}
	for _, id := range ids {
		if t := r.s.todos[id]; keep(t) {
			todos = append(todos, t)
		}
	}
	return todos
}
