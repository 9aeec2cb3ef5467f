package handler

import (
	"errors"
	"net/http"
	"strconv"

	"todo_backend/internal/logging"
	"todo_backend/internal/middleware"
	"todo_backend/internal/model"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	detailTodoNotFound = "To-do not found!"
	detailInternal     = "Internal server error"
)

// writeError maps service errors onto status codes and {"detail": ...} bodies.
// Anything unrecognized is logged and answered with a generic 500.
func writeError(c *gin.Context, log logging.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"detail": verr.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not authenticate user."})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials."})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authorized to perform this action"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Error on password change."})
	case errors.Is(err, service.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": detailTodoNotFound})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found."})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"detail": "Username already registered."})
	default:
		_ = c.Error(err)
		log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request: " + err.Error()})
}

// identityOrAbort fetches the caller identity; routes without JWTAuthMiddleware never get one
func identityOrAbort(c *gin.Context) (model.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials."})
	}
	return identity, ok
}

// todoIDParam parses the :id path parameter, which must be a positive integer
func todoIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid to-do ID"})
		return 0, false
	}
	return id, true
}
