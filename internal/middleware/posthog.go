package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health":                  true,
	"/api/v1/tickets/stream":   true,
	"/api/v1/bootstrap/status": true,
}

// PosthogMiddleware tracks successful authenticated API calls with PostHog.
// Only the route template and status are sent, never request bodies.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		principalID, exists := GetPrincipalIDFromContext(c)
		if !exists {
			return
		}

		// "/api/v1/tickets/:entryID" -> "api_v1_tickets_:entryID"
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		posthogClient.Enqueue(principalID, eventName, map[string]any{
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status_code": c.Writer.Status(),
		})
	}
}
