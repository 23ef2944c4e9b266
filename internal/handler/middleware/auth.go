package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"foodbridge/internal/domain/actor"
	"foodbridge/internal/pkg/cookie"
	"foodbridge/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const ctxActorKey = "caller_actor"

type AuthMiddleware struct {
	jwtService *jwt.Service
}

func NewAuthMiddleware(jwtService *jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.GetAccessToken(c)

		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimSpace(authHeader[len("Bearer "):])
			}
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		caller, err := claims.ToActor()
		if err != nil {
			slog.Warn("Token carried unknown role or affiliation", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxActorKey, caller)
		c.Set("jwt_claims", map[string]any{
			"user_id":     caller.ID.String(),
			"role":        caller.Role.String(),
			"affiliation": caller.Affiliation.String(),
		})
		c.Next()
	}
}

// RequireOperator gates the maintenance endpoints.
func (m *AuthMiddleware) RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetActor(c)
		if !ok || !caller.Role.IsOperator() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Operator role required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetActor(c *gin.Context) (actor.Actor, bool) {
	value, exists := c.Get(ctxActorKey)
	if !exists {
		return actor.Actor{}, false
	}
	caller, ok := value.(actor.Actor)
	return caller, ok
}
