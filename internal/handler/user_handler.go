package handler

import (
	"net/http"

	"todo_backend/internal/logging"
	"todo_backend/internal/model"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the caller's own account
type UserHandler struct {
	service service.AuthService
	log     logging.Logger
}

func NewUserHandler(s service.AuthService, log logging.Logger) *UserHandler {
	return &UserHandler{service: s, log: log}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req model.PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), identity, req); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ChangePhoneNumber(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req model.PhoneNumberChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.ChangePhoneNumber(c.Request.Context(), identity, req); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterUserRoutes registers the /users routes behind authMW
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	users := rg.Group("/users")
	users.Use(authMW)
	{
		users.GET("/", h.GetUser)
		users.PUT("/change-password", h.ChangePassword)
		users.PUT("/change-phone-number", h.ChangePhoneNumber)
	}
}
