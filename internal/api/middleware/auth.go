package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"

	"github.com/gin-gonic/gin"
)

const viewerKey = "viewer"

// OptionalAuth resolves the session from the cookie or an Authorization
// header when present. Requests without a valid session pass through
// anonymously; RequireAuth decides whether that is allowed.
func OptionalAuth(authService service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			tokenString, _ = c.Cookie(cookieName)
		}
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := authService.ParseToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// the account may have been removed since the token was issued
		user, err := authService.CurrentUser(ctx, claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		c.Set("claims", claims)
		c.Set("userID", user.ID)
		c.Set("role", user.Role)
		c.Set(viewerKey, user)

		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// RequireAuth rejects anonymous requests. It must run after OptionalAuth.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Viewer(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthenticated.Error()})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole checks if the signed-in user has the specified role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := Viewer(c)
		if viewer == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthenticated.Error()})
			c.Abort()
			return
		}

		if viewer.Role != requiredRole {
			c.JSON(http.StatusForbidden, gin.H{"error": service.ErrAdminRequired.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin is a convenience function for requiring admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// Viewer returns the signed-in user, or nil for anonymous requests.
func Viewer(c *gin.Context) *models.User {
	v, exists := c.Get(viewerKey)
	if !exists {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
