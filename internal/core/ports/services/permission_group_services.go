package services

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

// PermissionGroupReaderSvc defines read operations for permission groups
type PermissionGroupReaderSvc interface {
	GetCatalog() []domain.CatalogModule
	GetGroup(ctx context.Context, actor domain.Principal, groupID string) (*domain.PermissionGroup, error)
	ListGroups(ctx context.Context, actor domain.Principal) ([]domain.PermissionGroup, error)
}

// PermissionGroupWriterSvc defines write operations for permission groups
type PermissionGroupWriterSvc interface {
	CreateGroup(ctx context.Context, actor domain.Principal, req dto.CreatePermissionGroupRequest) (*domain.PermissionGroup, error)
	UpdateGroup(ctx context.Context, actor domain.Principal, groupID string, req dto.UpdatePermissionGroupRequest) (*domain.PermissionGroup, error)

	// DeleteGroup fails with a validation error while principals reference the group.
	DeleteGroup(ctx context.Context, actor domain.Principal, groupID string) error
}

// PermissionGroupSvcFacade combines all permission group service interfaces
type PermissionGroupSvcFacade interface {
	PermissionGroupReaderSvc
	PermissionGroupWriterSvc
}
