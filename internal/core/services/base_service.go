package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
)

// DefaultStoreTimeout bounds a single store call when no timeout is configured.
const DefaultStoreTimeout = 5 * time.Second

// BaseService provides common functionality for all services
type BaseService struct {
	Authorizer   portssvc.AuthorizationSvc
	StoreTimeout time.Duration
	Clock        func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizePrincipal checks actor may perform action on module. Without an
// authorizer every request is refused.
func (s *BaseService) AuthorizePrincipal(ctx context.Context, actor domain.Principal, module domain.Module, action domain.Action) error {
	if s.Authorizer == nil {
		err := fmt.Errorf("%w: no authorizer configured", apperrors.ErrForbidden)
		s.LogError(ctx, err, "Authorization unavailable", slog.String("principal_id", actor.ID))
		return err
	}
	if err := s.Authorizer.Authorize(ctx, actor, module, action); err != nil {
		s.LogWarn(ctx, "Principal not authorized",
			slog.String("principal_id", actor.ID),
			slog.String("permission", domain.PermissionName(module, action)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// storeContext derives a context bounded by the store timeout. Callers must call cancel.
func (s *BaseService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *BaseService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}
