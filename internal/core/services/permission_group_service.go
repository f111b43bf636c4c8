package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/google/uuid"
)

type permissionGroupService struct {
	BaseService
	groupRepo     portsrepo.PermissionGroupRepositoryFacade
	principalRepo portsrepo.PrincipalReader
}

// PermissionGroupServiceOption configures the permission group service
type PermissionGroupServiceOption func(*permissionGroupService)

// WithPermissionGroupAuthorizer sets the authorization engine. It is also told
// about every group write so cached grants are dropped.
func WithPermissionGroupAuthorizer(authorizer portssvc.AuthorizationSvc) PermissionGroupServiceOption {
	return func(s *permissionGroupService) {
		s.Authorizer = authorizer
	}
}

// WithPermissionGroupStoreTimeout bounds each store call.
func WithPermissionGroupStoreTimeout(d time.Duration) PermissionGroupServiceOption {
	return func(s *permissionGroupService) {
		s.StoreTimeout = d
	}
}

// NewPermissionGroupService creates the permission group service.
func NewPermissionGroupService(
	groupRepo portsrepo.PermissionGroupRepositoryFacade,
	principalRepo portsrepo.PrincipalReader,
	options ...PermissionGroupServiceOption,
) portssvc.PermissionGroupSvcFacade {
	svc := &permissionGroupService{groupRepo: groupRepo, principalRepo: principalRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PermissionGroupSvcFacade = (*permissionGroupService)(nil)

func (s *permissionGroupService) GetCatalog() []domain.CatalogModule {
	return domain.Catalog()
}

func (s *permissionGroupService) GetGroup(ctx context.Context, actor domain.Principal, groupID string) (*domain.PermissionGroup, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleSettings, domain.ActionView); err != nil {
		return nil, err
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	group, err := s.groupRepo.FindGroupByID(storeCtx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permission group: %w", err)
	}
	return group, nil
}

func (s *permissionGroupService) ListGroups(ctx context.Context, actor domain.Principal) ([]domain.PermissionGroup, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleSettings, domain.ActionView); err != nil {
		return nil, err
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	groups, err := s.groupRepo.ListGroups(storeCtx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list permission groups")
		return nil, fmt.Errorf("failed to list permission groups: %w", err)
	}
	return groups, nil
}

func (s *permissionGroupService) CreateGroup(ctx context.Context, actor domain.Principal, req dto.CreatePermissionGroupRequest) (*domain.PermissionGroup, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleSettings, domain.ActionEdit); err != nil {
		return nil, err
	}
	grants, err := domain.ParseGrants(req.Grants)
	if err != nil {
		return nil, err
	}
	group := domain.PermissionGroup{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(req.Name),
		IsAdmin:        req.IsAdmin,
		Grants:         grants,
		CatalogVersion: domain.CatalogVersion,
		AuditFields:    domain.NewAuditFields(actor.ID, s.now()),
	}
	if err := group.Validate(); err != nil {
		return nil, err
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.groupRepo.SaveGroup(storeCtx, group); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: permission group %q already exists", apperrors.ErrDuplicate, group.Name)
		}
		s.LogError(ctx, err, "Failed to save permission group")
		return nil, fmt.Errorf("failed to save permission group: %w", err)
	}
	s.LogInfo(ctx, "Permission group created",
		slog.String("group_id", group.ID),
		slog.Bool("is_admin", group.IsAdmin))
	return &group, nil
}

// UpdateGroup replaces the present fields. The change is visible to the next
// authorization check of any principal in the group.
func (s *permissionGroupService) UpdateGroup(ctx context.Context, actor domain.Principal, groupID string, req dto.UpdatePermissionGroupRequest) (*domain.PermissionGroup, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleSettings, domain.ActionEdit); err != nil {
		return nil, err
	}

	readCtx, cancel := s.storeContext(ctx)
	current, err := s.groupRepo.FindGroupByID(readCtx, groupID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission group: %w", err)
	}

	updated := current.Clone()
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.IsAdmin != nil {
		updated.IsAdmin = *req.IsAdmin
	}
	if req.Grants != nil {
		grants, err := domain.ParseGrants(*req.Grants)
		if err != nil {
			return nil, err
		}
		updated.Grants = grants
	}
	updated.CatalogVersion = domain.CatalogVersion
	updated.Touch(actor.ID, s.now())
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if current.IsAdmin && !updated.IsAdmin {
		s.LogWarn(ctx, "Admin flag revoked from permission group",
			slog.String("group_id", groupID),
			slog.String("group_name", updated.Name),
			slog.String("actor_id", actor.ID))
	}

	writeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.groupRepo.UpdateGroup(writeCtx, updated); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: permission group %q already exists", apperrors.ErrDuplicate, updated.Name)
		}
		return nil, fmt.Errorf("failed to update permission group: %w", err)
	}
	s.invalidate(ctx, groupID)
	s.LogInfo(ctx, "Permission group updated", slog.String("group_id", groupID))
	return &updated, nil
}

// DeleteGroup refuses to remove a group that principals still reference.
func (s *permissionGroupService) DeleteGroup(ctx context.Context, actor domain.Principal, groupID string) error {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleSettings, domain.ActionEdit); err != nil {
		return err
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	count, err := s.principalRepo.CountPrincipalsByGroup(storeCtx, groupID)
	if err != nil {
		return fmt.Errorf("failed to count group members: %w", err)
	}
	if count > 0 {
		return apperrors.Validationf("permission group is assigned to %d employee(s)", count)
	}
	if err := s.groupRepo.DeleteGroup(storeCtx, groupID); err != nil {
		return fmt.Errorf("failed to delete permission group: %w", err)
	}
	s.invalidate(ctx, groupID)
	s.LogInfo(ctx, "Permission group deleted", slog.String("group_id", groupID))
	return nil
}

func (s *permissionGroupService) invalidate(ctx context.Context, groupID string) {
	if s.Authorizer != nil {
		s.Authorizer.InvalidateGroup(ctx, groupID)
	}
}
