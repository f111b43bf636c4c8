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

// principalService manages employees. Employees are deactivated, never deleted.
type principalService struct {
	BaseService
	principalRepo portsrepo.PrincipalRepositoryFacade
	groupRepo     portsrepo.PermissionGroupReader
	identity      portssvc.IdentityProvider
}

// PrincipalServiceOption configures the principal service
type PrincipalServiceOption func(*principalService)

// WithPrincipalAuthorizer sets the authorization engine.
func WithPrincipalAuthorizer(authorizer portssvc.AuthorizationSvc) PrincipalServiceOption {
	return func(s *principalService) {
		s.Authorizer = authorizer
	}
}

// WithPrincipalStoreTimeout bounds each store call.
func WithPrincipalStoreTimeout(d time.Duration) PrincipalServiceOption {
	return func(s *principalService) {
		s.StoreTimeout = d
	}
}

// NewPrincipalService creates the employee service.
func NewPrincipalService(
	principalRepo portsrepo.PrincipalRepositoryFacade,
	groupRepo portsrepo.PermissionGroupReader,
	identity portssvc.IdentityProvider,
	options ...PrincipalServiceOption,
) portssvc.PrincipalSvcFacade {
	svc := &principalService{principalRepo: principalRepo, groupRepo: groupRepo, identity: identity}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PrincipalSvcFacade = (*principalService)(nil)

// ResolvePrincipal loads the principal behind an authenticated token.
func (s *principalService) ResolvePrincipal(ctx context.Context, principalID string) (*domain.Principal, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	principal, err := s.principalRepo.FindPrincipalByID(storeCtx, principalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve principal: %w", err)
	}
	return principal, nil
}

func (s *principalService) GetEmployee(ctx context.Context, actor domain.Principal, employeeID string) (*domain.Principal, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleEmployees, domain.ActionView); err != nil {
		return nil, err
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	principal, err := s.principalRepo.FindPrincipalByID(storeCtx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return principal, nil
}

func (s *principalService) ListEmployees(ctx context.Context, actor domain.Principal, params dto.ListEmployeesParams) ([]domain.Principal, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleEmployees, domain.ActionView); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	principals, err := s.principalRepo.ListPrincipals(storeCtx, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list employees")
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return principals, nil
}

// CreateEmployee adds an employee with a password credential. Placing someone
// in an admin group additionally needs settings.edit.
func (s *principalService) CreateEmployee(ctx context.Context, actor domain.Principal, req dto.CreateEmployeeRequest) (*domain.Principal, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleEmployees, domain.ActionAdd); err != nil {
		return nil, err
	}
	group, err := s.existingGroup(ctx, req.PermissionGroupID)
	if err != nil {
		return nil, err
	}
	if group.IsAdmin {
		if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleSettings, domain.ActionEdit); err != nil {
			return nil, err
		}
	}

	now := s.now()
	principal := domain.Principal{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(req.Name),
		Email:             domain.NormalizeEmail(req.Email),
		PermissionGroupID: group.ID,
		Active:            true,
		AuditFields:       domain.NewAuditFields(actor.ID, now),
	}
	if err := principal.Validate(); err != nil {
		return nil, err
	}

	lookupCtx, cancel := s.storeContext(ctx)
	_, err = s.principalRepo.FindPrincipalByEmail(lookupCtx, principal.Email)
	cancel()
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: an employee with this email already exists", apperrors.ErrDuplicate)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("failed to check employee email: %w", err)
	}

	identityID, err := s.identity.CreateCredential(ctx, principal.Email, req.Password)
	if err != nil {
		return nil, err
	}
	principal.IdentityID = identityID

	saveCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.principalRepo.SavePrincipal(saveCtx, principal); err != nil {
		if derr := s.identity.DeleteCredential(context.WithoutCancel(ctx), identityID); derr != nil {
			s.LogError(ctx, derr, "Failed to remove credential of unsaved employee", slog.String("identity_id", identityID))
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: an employee with this email already exists", apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "Failed to save employee")
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}
	s.LogInfo(ctx, "Employee created", slog.String("employee_id", principal.ID), slog.String("group_id", group.ID))
	return &principal, nil
}

// UpdateEmployee changes name, group or active flag. Moving an employee to
// another group requires settings.edit as well.
func (s *principalService) UpdateEmployee(ctx context.Context, actor domain.Principal, employeeID string, req dto.UpdateEmployeeRequest) (*domain.Principal, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleEmployees, domain.ActionEdit); err != nil {
		return nil, err
	}

	readCtx, cancel := s.storeContext(ctx)
	current, err := s.principalRepo.FindPrincipalByID(readCtx, employeeID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	updated := *current
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.PermissionGroupID != nil && *req.PermissionGroupID != current.PermissionGroupID {
		if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleSettings, domain.ActionEdit); err != nil {
			return nil, err
		}
		group, err := s.existingGroup(ctx, *req.PermissionGroupID)
		if err != nil {
			return nil, err
		}
		updated.PermissionGroupID = group.ID
	}
	if req.Active != nil {
		if !*req.Active && employeeID == actor.ID {
			return nil, apperrors.Validationf("you cannot deactivate yourself")
		}
		updated.Active = *req.Active
	}
	updated.Touch(actor.ID, s.now())
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	writeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.principalRepo.UpdatePrincipal(writeCtx, updated); err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	s.LogInfo(ctx, "Employee updated", slog.String("employee_id", employeeID))
	return &updated, nil
}

// DeactivateEmployee marks the employee inactive. Repeating it is a no-op.
func (s *principalService) DeactivateEmployee(ctx context.Context, actor domain.Principal, employeeID string) error {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleEmployees, domain.ActionDelete); err != nil {
		return err
	}
	if employeeID == actor.ID {
		return apperrors.Validationf("you cannot deactivate yourself")
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	principal, err := s.principalRepo.FindPrincipalByID(storeCtx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}
	if !principal.Active {
		return nil
	}
	principal.Active = false
	principal.Touch(actor.ID, s.now())
	if err := s.principalRepo.UpdatePrincipal(storeCtx, *principal); err != nil {
		return fmt.Errorf("failed to deactivate employee: %w", err)
	}
	s.LogInfo(ctx, "Employee deactivated", slog.String("employee_id", employeeID))
	return nil
}

func (s *principalService) existingGroup(ctx context.Context, groupID string) (*domain.PermissionGroup, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	group, err := s.groupRepo.FindGroupByID(storeCtx, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Validationf("permission group does not exist")
		}
		return nil, fmt.Errorf("failed to get permission group: %w", err)
	}
	return group, nil
}
