package service

import (
	"context"
	"testing"
	"time"

	"todo_backend/internal/logging"
	"todo_backend/internal/model"
	"todo_backend/internal/repository"
	"todo_backend/internal/utils"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store *repository.MemoryStore
	auth  AuthService
	todos TodoService
	admin AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	jwtUtil, err := utils.NewJWTUtil("test-secret", "HS256", 20*time.Minute)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	return &testEnv{
		store: store,
		auth:  NewAuthService(store, jwtUtil, logging.Discard(), "rootadmin"),
		todos: NewTodoService(store),
		admin: NewAdminService(store, logging.Discard()),
	}
}

func signupRequest(username string) model.SignupRequest {
	return model.SignupRequest{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "First",
		LastName:  "Last",
		Password:  "secret123",
		Role:      "user",
	}
}

// signup registers username and returns its resolved identity
func (e *testEnv) signup(t *testing.T, username string) model.Identity {
	t.Helper()
	ctx := context.Background()
	_, err := e.auth.Signup(ctx, signupRequest(username))
	require.NoError(t, err)

	_, token, err := e.auth.Authenticate(ctx, username, "secret123")
	require.NoError(t, err)
	id, err := e.auth.ResolveIdentity(ctx, token)
	require.NoError(t, err)
	return id
}

func ptr[T any](v T) *T {
	return &v
}
