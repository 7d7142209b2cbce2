package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AccountIDKey is the gin context key holding the authenticated account ID.
const AccountIDKey = "account_id"

// SessionVerifier validates a bearer token and returns the claims it carries.
type SessionVerifier interface {
	Parse(token string) (map[string]string, error)
}

// RequireSession rejects requests without a valid bearer session token and
// stores the account ID from the token's subject on the gin context.
func RequireSession(verifier SessionVerifier) gin.HandlerFunc {
	const prefix = "Bearer "

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := verifier.Parse(strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		sub := claims["sub"]
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		c.Set(AccountIDKey, sub)
		c.Next()
	}
}

// AccountID retrieves the authenticated account ID set by RequireSession.
func AccountID(c *gin.Context) string {
	if id, exists := c.Get(AccountIDKey); exists {
		if str, ok := id.(string); ok {
			return str
		}
	}
	return ""
}
