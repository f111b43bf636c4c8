package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const actorKey = contextKey("actor")

// PrincipalResolver loads the principal named by an access token.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, principalID string) (*domain.Principal, error)
}

// ActorMiddleware loads the acting principal after AuthMiddleware has validated
// the token. Unknown and deactivated principals are rejected with 401.
func ActorMiddleware(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		principalID, ok := GetPrincipalIDFromContext(c)
		if !ok {
			logger.Error("ActorMiddleware used without AuthMiddleware")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		principal, err := resolver.ResolvePrincipal(c.Request.Context(), principalID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				logger.Warn("Token subject does not match any principal")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			appErr := apperrors.FromError(err)
			logger.Error("Failed to resolve principal", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		if !principal.Active {
			logger.Warn("Deactivated principal presented a valid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
			return
		}

		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), actorKey, *principal))
		c.Next()
	}
}

// GetActorFromContext returns the principal loaded by ActorMiddleware.
func GetActorFromContext(c *gin.Context) (domain.Principal, bool) {
	actor, ok := c.Request.Context().Value(actorKey).(domain.Principal)
	return actor, ok
}
