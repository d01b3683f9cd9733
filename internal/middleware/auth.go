package middleware

import (
	"net/http"
	"strings"

	"feeportal/config"
	"feeportal/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthRequired.
const (
	KeyUserID = "user_id"
	KeyEmail  = "email"
	KeyRole   = "role"
	KeyClaims = "claims"
)

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"statusCode": status, "message": message, "data": nil})
}

// AuthRequired validates the bearer access token and sets user_id, email and role in context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abort(c, http.StatusUnauthorized, "invalid authorization format")
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyClaims, claims)
		c.Next()
	}
}

// RequireRole checks that the authenticated user has one of the allowed roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "forbidden")
	}
}

// GetUserID returns the authenticated user ID from context (must be used after AuthRequired).
func GetUserID(c *gin.Context) uint {
	v, ok := c.Get(KeyUserID)
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

func GetRole(c *gin.Context) string {
	return c.GetString(KeyRole)
}
