package middleware

import (
	"net/http"
	"strings"

	"todo_backend/internal/model"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	IdentityKey = "identity"

	credentialsDetail = "Could not validate credentials."
)

// JWTAuthMiddleware resolves the bearer token into a model.Identity and
// stores it in the gin context
func JWTAuthMiddleware(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": credentialsDetail})
			return
		}

		identity, err := auth.ResolveIdentity(c.Request.Context(), parts[1])
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": credentialsDetail})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// GetIdentity returns the identity stored by JWTAuthMiddleware
func GetIdentity(c *gin.Context) (model.Identity, bool) {
	val, exists := c.Get(IdentityKey)
	if !exists {
		return model.Identity{}, false
	}
	identity, ok := val.(model.Identity)
	return identity, ok
}
