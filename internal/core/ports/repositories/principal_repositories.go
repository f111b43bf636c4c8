package repositories

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// PrincipalReader defines read operations for principals (employees)
type PrincipalReader interface {
	// FindPrincipalByID retrieves a principal by ID.
	FindPrincipalByID(ctx context.Context, principalID string) (*domain.Principal, error)

	// FindPrincipalByEmail retrieves a principal by normalized email.
	FindPrincipalByEmail(ctx context.Context, email string) (*domain.Principal, error)

	// ListPrincipals retrieves a paginated list of principals in creation order.
	ListPrincipals(ctx context.Context, limit int, offset int) ([]domain.Principal, error)

	// CountPrincipals returns the number of principals, active or not.
	CountPrincipals(ctx context.Context) (int, error)

	// CountPrincipalsByGroup returns how many principals reference groupID.
	CountPrincipalsByGroup(ctx context.Context, groupID string) (int, error)
}

// PrincipalWriter defines write operations for principals
type PrincipalWriter interface {
	// SavePrincipal persists a new principal. Returns apperrors.ErrDuplicate on an email clash.
	SavePrincipal(ctx context.Context, principal domain.Principal) error

	// UpdatePrincipal updates name, group and active flag.
	UpdatePrincipal(ctx context.Context, principal domain.Principal) error
}

// PrincipalRepositoryFacade combines all principal repository interfaces
type PrincipalRepositoryFacade interface {
	PrincipalReader
	PrincipalWriter
}

// CredentialRepositoryFacade stores password credentials for the identity provider.
type CredentialRepositoryFacade interface {
	SaveCredential(ctx context.Context, credential domain.Credential) error
	FindCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error)
	DeleteCredential(ctx context.Context, credentialID string) error
}

// SystemStateRepositoryFacade owns the bootstrap sentinel.
type SystemStateRepositoryFacade interface {
	// FindSystemState returns the sentinel, or a zero SystemState if the system is empty.
	FindSystemState(ctx context.Context) (*domain.SystemState, error)

	// InitializeSystem atomically claims the sentinel, creates group if no group with
	// the same name exists, and saves principal referencing the resulting group.
	// It returns the group the principal was attached to. A lost race returns
	// apperrors.ErrAlreadyInitialized and writes nothing.
	InitializeSystem(ctx context.Context, group domain.PermissionGroup, principal domain.Principal) (*domain.PermissionGroup, error)
}
