// auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"order-lifecycle-service/internal/service"
)

// Middleware que valida el token y guarda la info del usuario en el contexto
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		user, err := authService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth deja pasar sin token (checkout de invitados). Si hay token
// válido, la identidad de la sesión queda en el contexto y manda sobre
// cualquier userId del body.
func OptionalAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if user, err := authService.ValidateToken(token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *service.AuthUser) {
	c.Set("userID", user.ID)
	c.Set("userName", user.Name)
	c.Set("userEmail", user.Email)
	c.Set("userPermissions", user.Permissions)
}
