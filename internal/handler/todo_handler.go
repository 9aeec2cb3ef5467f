package handler

import (
	"net/http"

	"todo_backend/internal/logging"
	"todo_backend/internal/model"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// TodoHandler handles the caller's own todos
type TodoHandler struct {
	service service.TodoService
	log     logging.Logger
}

// NewTodoHandler creates a new TodoHandler
func NewTodoHandler(s service.TodoService, log logging.Logger) *TodoHandler {
	return &TodoHandler{service: s, log: log}
}

func (h *TodoHandler) ListTodos(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	todos, err := h.service.List(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) GetTodo(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(c)
	if !ok {
		return
	}

	todo, err := h.service.Get(c.Request.Context(), identity, todoID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) CreateTodo(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req model.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	todo, err := h.service.Create(c.Request.Context(), identity, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(c)
	if !ok {
		return
	}

	var req model.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), identity, todoID, req); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), identity, todoID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterTodoRoutes registers the owner scoped /todo routes behind authMW
func (h *TodoHandler) RegisterTodoRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	todos := rg.Group("/todo")
	todos.Use(authMW)
	{
		todos.GET("/", h.ListTodos)
		todos.POST("/", h.CreateTodo)
		todos.GET("/:id", h.GetTodo)
		todos.PUT("/:id", h.UpdateTodo)
		todos.DELETE("/:id", h.DeleteTodo)
	}
}
