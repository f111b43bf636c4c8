package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// principalIDKey is the key used to store the authenticated principal's ID.
const principalIDKey = contextKey("principalID")

// WithPrincipalID returns a copy of ctx carrying the authenticated principal id.
func WithPrincipalID(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, principalIDKey, principalID)
}

// GetPrincipalIDFromContext retrieves the authenticated principal ID from the request.
// It returns the ID and a boolean indicating if it was found.
func GetPrincipalIDFromContext(c *gin.Context) (string, bool) {
	principalID, ok := c.Request.Context().Value(principalIDKey).(string)
	if !ok || principalID == "" {
		return "", false
	}
	return principalID, true
}
