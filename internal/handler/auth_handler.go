package handler

import (
	"net/http"

	"todo_backend/internal/logging"
	"todo_backend/internal/model"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles signup and signin
type AuthHandler struct {
	service service.AuthService
	log     logging.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, log logging.Logger) *AuthHandler {
	return &AuthHandler{service: s, log: log}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Signin takes the OAuth2 password form (username, password) and answers with a bearer token
func (h *AuthHandler) Signin(c *gin.Context) {
	var req model.SigninRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	_, token, err := h.service.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/signin", h.Signin)
	}
}
