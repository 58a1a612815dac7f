package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/auth"
)

// Keys under which the verified claims are stored in gin.Context.
//
// Why constants? A typo in c.Get("usr_id") compiles and silently returns
// nothing. Handlers go through GetUserID and GetEmail, which use these.
const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
)

// AuthMiddleware rejects requests without a valid "Bearer <jwt>"
// Authorization header and stores the caller's identity for handlers.
//
// The secret is passed in rather than read from config so tests can sign
// tokens with any key.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization format, expected: Bearer <token>",
			})
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		SetIdentity(c, claims)
		c.Next()
	}
}

// SetIdentity stores verified claims on the request. The WebSocket handler
// calls it too, after checking a token passed as a query parameter, so the
// request log attributes the connection to its user.
func SetIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyEmail, claims.Email)
}

// GetUserID returns the authenticated user, or uuid.Nil when the request
// did not pass through AuthMiddleware.
//
// c.Get returns (any, bool); the type assertion lives here once instead of
// in every handler. uuid.Nil matches no row, so a missing identity fails
// closed in the stores.
func GetUserID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func GetEmail(c *gin.Context) string {
	val, exists := c.Get(ContextKeyEmail)
	if !exists {
		return ""
	}
	email, ok := val.(string)
	if !ok {
		return ""
	}
	return email
}
