package services

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// AuthorizationSvc decides whether a principal may perform an action on a module.
// The acting principal is always passed explicitly.
type AuthorizationSvc interface {
	// Check returns Allow or Deny(reason). Resolution failures deny.
	Check(ctx context.Context, principal domain.Principal, module domain.Module, action domain.Action) domain.Decision

	// Authorize returns nil on Allow, an apperrors.ErrForbidden-wrapped error on Deny
	// and an apperrors.ErrStoreUnavailable-wrapped error when the group could not be read.
	Authorize(ctx context.Context, principal domain.Principal, module domain.Module, action domain.Action) error

	// EffectivePermissions flattens the principal's grants with IsAdmin resolved.
	EffectivePermissions(ctx context.Context, principal domain.Principal) (*domain.EffectivePermissions, error)

	// InvalidateGroup drops any cached copy of the group.
	InvalidateGroup(ctx context.Context, groupID string)
}

// BootstrapSvc creates the first administrator of an empty system.
type BootstrapSvc interface {
	// IsEmpty reports whether no principal exists yet.
	IsEmpty(ctx context.Context) (bool, error)

	// Initialize creates the credential, the super_admin group and the first principal
	// as one unit. Failures are *apperrors.InitializationError.
	Initialize(ctx context.Context, email, password, name string) (*domain.Principal, error)
}
