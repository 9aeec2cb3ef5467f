package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"todo_backend/internal/logging"
	"todo_backend/internal/middleware"
	"todo_backend/internal/model"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var alice = model.Identity{UserID: 1, Username: "alice01", Role: model.RoleMember}

func withIdentity(id model.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, id)
		c.Next()
	}
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWriteError(t *testing.T) {
	verr := &service.ValidationError{Err: errors.New("title too short")}
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"validation", verr, http.StatusBadRequest, "title too short"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "Could not authenticate user."},
		{"token", service.ErrInvalidToken, http.StatusUnauthorized, "Could not validate credentials."},
		{"forbidden", service.ErrForbidden, http.StatusUnauthorized, "Not authorized to perform this action"},
		{"password change", service.ErrUnauthorized, http.StatusUnauthorized, "Error on password change."},
		{"todo not found", service.ErrTodoNotFound, http.StatusNotFound, "To-do not found!"},
		{"duplicate", service.ErrUserAlreadyExists, http.StatusConflict, "Username already registered."},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { writeError(c, logging.Discard(), tc.err) })

			w := serve(r, http.MethodGet, "/", "")

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.JSONEq(t, `{"detail":"`+tc.wantDetail+`"}`, w.Body.String())
		})
	}
}

func TestWriteError_StoreFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "info")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", func(c *gin.Context) { writeError(c, log, errors.New("connection reset")) })
	w := serve(r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestValidationErrorFromValidator(t *testing.T) {
	v := validator.New()
	err := v.Var("ab", "min=3")
	require.Error(t, err)

	r := gin.New()
	r.GET("/", func(c *gin.Context) { writeError(c, logging.Discard(), &service.ValidationError{Err: err}) })
	w := serve(r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- auth ---

type stubAuthService struct {
	service.AuthService
	signup       func(req model.SignupRequest) (*model.User, error)
	authenticate func(username, password string) (*model.User, string, error)
	getUser      func(id model.Identity) (*model.User, error)
	changePw     func(id model.Identity, req model.PasswordChangeRequest) error
	changePhone  func(id model.Identity, req model.PhoneNumberChangeRequest) error
}

func (s *stubAuthService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	return s.signup(req)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (*model.User, string, error) {
	return s.authenticate(username, password)
}

func (s *stubAuthService) GetUser(ctx context.Context, id model.Identity) (*model.User, error) {
	return s.getUser(id)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, id model.Identity, req model.PasswordChangeRequest) error {
	return s.changePw(id, req)
}

func (s *stubAuthService) ChangePhoneNumber(ctx context.Context, id model.Identity, req model.PhoneNumberChangeRequest) error {
	return s.changePhone(id, req)
}

func TestSignup_OmitsPasswordHash(t *testing.T) {
	auth := &stubAuthService{signup: func(req model.SignupRequest) (*model.User, error) {
		return &model.User{ID: 1, Username: req.Username, Role: req.Role, PasswordHash: "$2a$10$hash"}, nil
	}}
	r := gin.New()
	NewAuthHandler(auth, logging.Discard()).RegisterAuthRoutes(&r.RouterGroup)

	body := `{"username":"alice01","email":"a@example.com","first_name":"A","last_name":"L","password":"secret123","role":"user"}`
	w := serve(r, http.MethodPost, "/auth/signup", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice01"`)
	assert.NotContains(t, w.Body.String(), "hash")
}

func TestSignup_BindingFailure(t *testing.T) {
	auth := &stubAuthService{signup: func(model.SignupRequest) (*model.User, error) {
		t.Fatal("service must not be reached")
		return nil, nil
	}}
	r := gin.New()
	NewAuthHandler(auth, logging.Discard()).RegisterAuthRoutes(&r.RouterGroup)

	w := serve(r, http.MethodPost, "/auth/signup", `{"username":"bob"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "detail")
}

func TestSignin(t *testing.T) {
	auth := &stubAuthService{authenticate: func(username, password string) (*model.User, string, error) {
		if username == "alice01" && password == "secret123" {
			return &model.User{ID: 1}, "signed.jwt.token", nil
		}
		return nil, "", service.ErrInvalidCredentials
	}}
	r := gin.New()
	NewAuthHandler(auth, logging.Discard()).RegisterAuthRoutes(&r.RouterGroup)

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(url.Values{"username": {"alice01"}, "password": {"secret123"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"signed.jwt.token","token_type":"bearer"}`, w.Body.String())

	w = post(url.Values{"username": {"alice01"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Could not authenticate user."}`, w.Body.String())

	w = post(url.Values{"username": {"alice01"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserRoutes(t *testing.T) {
	var gotPhone string
	auth := &stubAuthService{
		getUser: func(id model.Identity) (*model.User, error) {
			return &model.User{ID: id.UserID, Username: id.Username}, nil
		},
		changePw: func(id model.Identity, req model.PasswordChangeRequest) error {
			if req.Password != "secret123" {
				return service.ErrUnauthorized
			}
			return nil
		},
		changePhone: func(id model.Identity, req model.PhoneNumberChangeRequest) error {
			gotPhone = req.PhoneNumber
			return nil
		},
	}
	r := gin.New()
	NewUserHandler(auth, logging.Discard()).RegisterUserRoutes(&r.RouterGroup, withIdentity(alice))

	w := serve(r, http.MethodGet, "/users/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice01"`)

	w = serve(r, http.MethodPut, "/users/change-password", `{"password":"secret123","new_password":"newsecret1"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodPut, "/users/change-password", `{"password":"wrongpass","new_password":"newsecret1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Error on password change."}`, w.Body.String())

	w = serve(r, http.MethodPut, "/users/change-phone-number", `{"phone_number":"5551234"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "5551234", gotPhone)
}

// --- todos ---

type stubTodoService struct {
	todos map[int64]model.Todo
	last  model.UpdateTodoRequest
}

func (s *stubTodoService) List(ctx context.Context, id model.Identity) ([]model.Todo, error) {
	out := []model.Todo{}
	for _, t := range s.todos {
		if t.OwnerID == id.UserID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTodoService) Get(ctx context.Context, id model.Identity, todoID int64) (*model.Todo, error) {
	t, ok := s.todos[todoID]
	if !ok || t.OwnerID != id.UserID {
		return nil, service.ErrTodoNotFound
	}
	return &t, nil
}

func (s *stubTodoService) Create(ctx context.Context, id model.Identity, req model.CreateTodoRequest) (*model.Todo, error) {
	t := model.Todo{ID: int64(len(s.todos) + 1), Title: req.Title, Description: req.Description, Priority: req.Priority, OwnerID: id.UserID}
	s.todos[t.ID] = t
	return &t, nil
}

func (s *stubTodoService) Update(ctx context.Context, id model.Identity, todoID int64, req model.UpdateTodoRequest) error {
	if _, err := s.Get(ctx, id, todoID); err != nil {
		return err
	}
	s.last = req
	return nil
}

func (s *stubTodoService) Delete(ctx context.Context, id model.Identity, todoID int64) error {
	if _, err := s.Get(ctx, id, todoID); err != nil {
		return err
	}
	delete(s.todos, todoID)
	return nil
}

func newTodoRouter(svc service.TodoService) *gin.Engine {
	r := gin.New()
	NewTodoHandler(svc, logging.Discard()).RegisterTodoRoutes(&r.RouterGroup, withIdentity(alice))
	return r
}

func TestTodoRoutes(t *testing.T) {
	svc := &stubTodoService{todos: map[int64]model.Todo{}}
	r := newTodoRouter(svc)

	w := serve(r, http.MethodPost, "/todo/", `{"title":"buy milk","description":"two liters","priority":2,"owner_id":42}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"owner_id":1`)

	w = serve(r, http.MethodGet, "/todo/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"buy milk"`)

	w = serve(r, http.MethodGet, "/todo/1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPut, "/todo/1", `{"priority":4}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, svc.last.Priority)
	assert.Equal(t, 4, *svc.last.Priority)
	assert.Nil(t, svc.last.Title)

	w = serve(r, http.MethodDelete, "/todo/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodDelete, "/todo/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"To-do not found!"}`, w.Body.String())
}

func TestTodoRoutes_BadInput(t *testing.T) {
	r := newTodoRouter(&stubTodoService{todos: map[int64]model.Todo{}})

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"non numeric id", http.MethodGet, "/todo/abc", ""},
		{"zero id", http.MethodGet, "/todo/0", ""},
		{"short title", http.MethodPost, "/todo/", `{"title":"ab","description":"valid desc","priority":2}`},
		{"priority out of range", http.MethodPost, "/todo/", `{"title":"valid","description":"valid desc","priority":9}`},
		{"update priority out of range", http.MethodPut, "/todo/1", `{"priority":0}`},
		{"malformed json", http.MethodPost, "/todo/", `{"title":`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, tc.method, tc.target, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestTodoRoutes_RequireIdentity(t *testing.T) {
	r := gin.New()
	NewTodoHandler(&stubTodoService{}, logging.Discard()).RegisterTodoRoutes(&r.RouterGroup, func(c *gin.Context) { c.Next() })

	w := serve(r, http.MethodGet, "/todo/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- admin ---

type stubAdminService struct {
	filters model.AdminTodoFilters
	deleted int64
}

func (s *stubAdminService) ListAll(ctx context.Context, id model.Identity, filters model.AdminTodoFilters) ([]model.Todo, error) {
	s.filters = filters
	return []model.Todo{{ID: 7, Title: "any", OwnerID: 3}}, nil
}

func (s *stubAdminService) DeleteAny(ctx context.Context, id model.Identity, todoID int64) error {
	if todoID != 7 {
		return service.ErrTodoNotFound
	}
	s.deleted = todoID
	return nil
}

func (s *stubAdminService) ExportCSV(ctx context.Context, id model.Identity, filters model.AdminTodoFilters) (*bytes.Buffer, error) {
	return bytes.NewBufferString("ID,OwnerID\n7,3\n"), nil
}

func newAdminRouter(svc service.AdminService) *gin.Engine {
	r := gin.New()
	admin := model.Identity{UserID: 9, Username: "rootadmin", Role: model.RoleAdmin}
	NewAdminHandler(svc, logging.Discard()).RegisterAdminRoutes(&r.RouterGroup, withIdentity(admin), middleware.AdminMiddleware())
	return r
}

func TestAdminRoutes(t *testing.T) {
	svc := &stubAdminService{}
	r := newAdminRouter(svc)

	w := serve(r, http.MethodGet, "/admin/todo?owner_id=3&complete=false&priority=2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.filters.OwnerID)
	require.NotNil(t, svc.filters.Complete)
	require.NotNil(t, svc.filters.Priority)
	assert.Equal(t, 3, *svc.filters.OwnerID)
	assert.False(t, *svc.filters.Complete)
	assert.Equal(t, 2, *svc.filters.Priority)

	w = serve(r, http.MethodGet, "/admin/todo?owner_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodDelete, "/admin/todo/7", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.EqualValues(t, 7, svc.deleted)

	w = serve(r, http.MethodDelete, "/admin/todo/8", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodGet, "/admin/todo/export/csv", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "todos_export_")
	assert.Equal(t, "ID,OwnerID\n7,3\n", w.Body.String())
}

func TestAdminRoutes_MemberRejected(t *testing.T) {
	r := gin.New()
	NewAdminHandler(&stubAdminService{}, logging.Discard()).RegisterAdminRoutes(&r.RouterGroup, withIdentity(alice), middleware.AdminMiddleware())

	w := serve(r, http.MethodGet, "/admin/todo", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Not authorized to perform this action"}`, w.Body.String())
}

// --- health ---

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	r := gin.New()
	NewHealthHandler(pingFunc(func(context.Context) error { return nil }), logging.Discard()).RegisterHealthRoutes(&r.RouterGroup)
	w := serve(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"Healthy"}`, w.Body.String())

	r = gin.New()
	NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("down") }), logging.Discard()).RegisterHealthRoutes(&r.RouterGroup)
	w = serve(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"Unhealthy"}`, w.Body.String())
}
