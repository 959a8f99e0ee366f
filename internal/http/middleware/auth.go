package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/orderflow/internal/domain/user"
	"github.com/storefront/orderflow/internal/pkg/ctxutil"
	"github.com/storefront/orderflow/internal/platform/logger"
	"github.com/storefront/orderflow/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLog, authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		principal, err := am.authService.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": err.Error(), "code": "unauthorized"},
			})
			return
		}
		ctx := ctxutil.WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireElevated gates moderator/admin endpoints. Must run after RequireAuth.
func (am *AuthMiddleware) RequireElevated() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := ctxutil.GetPrincipal(c.Request.Context())
		if principal == nil || !user.HasElevatedAccess(principal.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "no permission to do it", "code": "forbidden"},
			})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
