package repositories

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// PermissionGroupReader defines read operations for permission groups
type PermissionGroupReader interface {
	// FindGroupByID retrieves a group by ID. Returns apperrors.ErrNotFound when absent.
	FindGroupByID(ctx context.Context, groupID string) (*domain.PermissionGroup, error)

	// FindGroupByName retrieves a group by its unique name.
	FindGroupByName(ctx context.Context, name string) (*domain.PermissionGroup, error)

	// ListGroups retrieves all groups ordered by name.
	ListGroups(ctx context.Context) ([]domain.PermissionGroup, error)
}

// PermissionGroupWriter defines write operations for permission groups
type PermissionGroupWriter interface {
	// SaveGroup persists a new group. Returns apperrors.ErrDuplicate on a name clash.
	SaveGroup(ctx context.Context, group domain.PermissionGroup) error

	// UpdateGroup replaces name, admin flag and grants of an existing group.
	UpdateGroup(ctx context.Context, group domain.PermissionGroup) error

	// DeleteGroup removes a group. It fails with apperrors.ErrValidation while any
	// principal still references the group.
	DeleteGroup(ctx context.Context, groupID string) error
}

// PermissionGroupRepositoryFacade combines all permission group repository interfaces
type PermissionGroupRepositoryFacade interface {
	PermissionGroupReader
	PermissionGroupWriter
}

// PermissionGroupCache is a read-through cache in front of PermissionGroupReader.
// Implementations must be safe for concurrent use.
//
// Fills are conditional: a caller takes Generation before reading the store and
// passes it to Set. Invalidate bumps the generation, so a copy read before an
// edit is never stored after it.
type PermissionGroupCache interface {
	Get(ctx context.Context, groupID string) (*domain.PermissionGroup, bool)
	// Generation reports the current generation of groupID. ok is false when
	// the cache cannot tell, in which case the caller must not fill.
	Generation(ctx context.Context, groupID string) (gen uint64, ok bool)
	// Set stores group only while its generation still equals gen.
	Set(ctx context.Context, group domain.PermissionGroup, gen uint64) bool
	Invalidate(ctx context.Context, groupID string)
}
