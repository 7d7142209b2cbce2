package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// The account API is browser-facing only through the registration, login and
// password flows, so the preflight surface stays small on purpose.
const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, X-Request-ID"
	corsMaxAgeSecs   = "7200"
)

// CORS answers preflights and stamps cross-origin response headers for the
// configured origins. An empty origin list disables cross-origin access
// entirely; a single "*" entry opens it up without credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		if strings.TrimSpace(origin) == "*" {
			wildcard = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if wildcard {
				c.Header("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Expose-Headers", TraceIDHeader)
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Max-Age", corsMaxAgeSecs)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
