package middleware

import (
	"net/http"
	"strings"

	"limpeja-api/res/auth"
	"limpeja-api/res/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contextKeyCurrentUser = "currentUser"

// GetCurrentUser returns the authenticated user set by AuthMiddleware, or nil
// for anonymous requests.
func GetCurrentUser(c *gin.Context) *store.User {
	if val, exists := c.Get(contextKeyCurrentUser); exists {
		if currentUser, ok := val.(*store.User); ok {
			return currentUser
		}
	}
	return nil
}

// AuthMiddleware resolves the Bearer access token into the current user.
// Requests without an Authorization header pass through anonymously; route
// groups that need a user stack RequireUser or RequireRole on top.
func AuthMiddleware(logger *zap.Logger, storeImpl store.Store, authImpl auth.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		headerVal := c.GetHeader("Authorization")
		if headerVal == "" {
			c.Next()
			return
		}

		headerValParts := strings.Split(headerVal, " ")
		if len(headerValParts) != 2 || !strings.EqualFold(headerValParts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Malformed Authorization header"})
			return
		}

		var accessTokenClaims auth.AccessTokenClaims
		if err := authImpl.ValidateToken(headerValParts[1], &accessTokenClaims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header"})
			return
		}

		currentUser, err := storeImpl.Users().Get(c.Request.Context(), accessTokenClaims.UserID)
		if err != nil || currentUser == nil {
			logger.Debug("access token references unknown user", zap.String("user_id", accessTokenClaims.UserID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header"})
			return
		}

		c.Set(contextKeyCurrentUser, currentUser)
		c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetCurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// RequireRole rejects requests whose user does not hold the given role.
func RequireRole(role store.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		currentUser := GetCurrentUser(c)
		if currentUser == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if currentUser.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access forbidden"})
			return
		}
		c.Next()
	}
}
