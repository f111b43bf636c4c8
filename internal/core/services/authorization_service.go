package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
)

// authorizationService implements portssvc.AuthorizationSvc on top of the
// permission group store with an optional read-through cache.
type authorizationService struct {
	BaseService
	groupRepo portsrepo.PermissionGroupReader
	cache     portsrepo.PermissionGroupCache
}

// AuthorizationOption configures the authorization service
type AuthorizationOption func(*authorizationService)

// WithPermissionGroupCache puts cache in front of the group store.
func WithPermissionGroupCache(cache portsrepo.PermissionGroupCache) AuthorizationOption {
	return func(s *authorizationService) {
		s.cache = cache
	}
}

// WithAuthorizationStoreTimeout bounds group lookups.
func WithAuthorizationStoreTimeout(d time.Duration) AuthorizationOption {
	return func(s *authorizationService) {
		s.StoreTimeout = d
	}
}

// NewAuthorizationService creates the authorization engine.
func NewAuthorizationService(groupRepo portsrepo.PermissionGroupReader, options ...AuthorizationOption) portssvc.AuthorizationSvc {
	svc := &authorizationService{groupRepo: groupRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AuthorizationSvc = (*authorizationService)(nil)

func (s *authorizationService) resolveGroup(ctx context.Context, groupID string) (*domain.PermissionGroup, error) {
	if groupID == "" {
		return nil, apperrors.ErrNotFound
	}
	var (
		gen     uint64
		canFill bool
	)
	if s.cache != nil {
		if group, ok := s.cache.Get(ctx, groupID); ok {
			return group, nil
		}
		// taken before the read so an edit that lands during it voids the fill
		gen, canFill = s.cache.Generation(ctx, groupID)
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	group, err := s.groupRepo.FindGroupByID(storeCtx, groupID)
	if err != nil {
		return nil, err
	}
	if canFill && !s.cache.Set(ctx, *group, gen) {
		s.GetLogger(ctx).DebugContext(ctx, "Skipped stale permission group fill",
			slog.String("group_id", groupID))
	}
	return group, nil
}

// Check never returns an error: anything that prevents a decision denies.
func (s *authorizationService) Check(ctx context.Context, principal domain.Principal, module domain.Module, action domain.Action) domain.Decision {
	if !principal.Active {
		return domain.Evaluate(&principal, nil, module, action)
	}
	group, err := s.resolveGroup(ctx, principal.PermissionGroupID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to resolve permission group",
				slog.String("principal_id", principal.ID),
				slog.String("group_id", principal.PermissionGroupID))
		}
		return domain.Deny("permission group not found")
	}
	return domain.Evaluate(&principal, group, module, action)
}

func (s *authorizationService) Authorize(ctx context.Context, principal domain.Principal, module domain.Module, action domain.Action) error {
	if !principal.Active {
		return apperrors.Forbiddenf("%s", domain.Evaluate(&principal, nil, module, action).Reason)
	}
	group, err := s.resolveGroup(ctx, principal.PermissionGroupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Forbiddenf("permission group not found")
		}
		s.LogError(ctx, err, "Failed to resolve permission group",
			slog.String("principal_id", principal.ID),
			slog.String("group_id", principal.PermissionGroupID))
		if errors.Is(err, apperrors.ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("%w: resolve permission group: %v", apperrors.ErrStoreUnavailable, err)
	}

	decision := domain.Evaluate(&principal, group, module, action)
	if !decision.Allowed {
		return apperrors.Forbiddenf("%s", decision.Reason)
	}
	return nil
}

func (s *authorizationService) EffectivePermissions(ctx context.Context, principal domain.Principal) (*domain.EffectivePermissions, error) {
	group, err := s.resolveGroup(ctx, principal.PermissionGroupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			ep := domain.Effective(principal, domain.PermissionGroup{ID: principal.PermissionGroupID})
			ep.Grants = domain.Grants{}
			return &ep, nil
		}
		return nil, fmt.Errorf("failed to resolve permission group: %w", err)
	}
	ep := domain.Effective(principal, *group)
	return &ep, nil
}

func (s *authorizationService) InvalidateGroup(ctx context.Context, groupID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, groupID)
	}
}
