package server

import (
	"todo_backend/internal/handler"
	"todo_backend/internal/logging"
	"todo_backend/internal/middleware"
	"todo_backend/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the services the router dispatches to
type Deps struct {
	Auth  service.AuthService
	Todos service.TodoService
	Admin service.AdminService
	Store handler.Pinger
	Log   logging.Logger

	CORSAllowedOrigins []string
}

// NewRouter builds the gin engine with middleware and every route registered
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(d.Log))
	router.Use(cors.New(corsConfig(d.CORSAllowedOrigins)))

	jwtAuthMW := middleware.JWTAuthMiddleware(d.Auth)
	adminRoleMW := middleware.AdminMiddleware()

	root := &router.RouterGroup
	handler.NewHealthHandler(d.Store, d.Log).RegisterHealthRoutes(root)
	handler.NewAuthHandler(d.Auth, d.Log).RegisterAuthRoutes(root)
	handler.NewUserHandler(d.Auth, d.Log).RegisterUserRoutes(root, jwtAuthMW)
	handler.NewTodoHandler(d.Todos, d.Log).RegisterTodoRoutes(root, jwtAuthMW)
	handler.NewAdminHandler(d.Admin, d.Log).RegisterAdminRoutes(root, jwtAuthMW, adminRoleMW)

	return router
}

func corsConfig(origins []string) cors.Config {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
		middleware.RequestIDHeader,
	}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "Content-Disposition"}
	return corsConfig
}
