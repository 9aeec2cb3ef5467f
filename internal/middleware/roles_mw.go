package middleware

import (
	"net/http"

	"todo_backend/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware lets the request through only when the identity has one of the allowed roles.
// Rejections answer 401 like every other authorization failure of the API.
func RoleMiddleware(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": credentialsDetail})
			return
		}

		for _, allowed := range allowedRoles {
			if identity.Role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authorized to perform this action"})
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}
