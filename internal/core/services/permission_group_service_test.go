package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPermissionGroups_CreateNormalizesGrants(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	svc := services.NewPermissionGroupService(w.store, w.store,
		services.WithPermissionGroupAuthorizer(services.NewAuthorizationService(w.store)))

	group, err := svc.CreateGroup(ctx, w.admin, dto.CreatePermissionGroupRequest{
		Name:   " Accountants ",
		Grants: map[string][]string{"Tickets": {"edit", "VIEW", "view"}, "reports": {}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Accountants", group.Name)
	assert.Equal(t, domain.Grants{domain.ModuleTickets: {domain.ActionView, domain.ActionEdit}}, group.Grants)
	assert.Equal(t, domain.CatalogVersion, group.CatalogVersion)

	_, err = svc.CreateGroup(ctx, w.admin, dto.CreatePermissionGroupRequest{Name: "accountants"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestPermissionGroups_RejectsUnknownGrants(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	svc := services.NewPermissionGroupService(w.store, w.store,
		services.WithPermissionGroupAuthorizer(services.NewAuthorizationService(w.store)))

	_, err := svc.CreateGroup(ctx, w.admin, dto.CreatePermissionGroupRequest{
		Name: "Odd", Grants: map[string][]string{"payroll": {"view"}},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), `unknown module "payroll"`)

	_, err = svc.CreateGroup(ctx, w.admin, dto.CreatePermissionGroupRequest{
		Name: "Odd", Grants: map[string][]string{"audit": {"delete"}},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPermissionGroups_RequireSettingsGrants(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	svc := services.NewPermissionGroupService(w.store, w.store,
		services.WithPermissionGroupAuthorizer(services.NewAuthorizationService(w.store)))

	groups, err := svc.ListGroups(ctx, w.manager)
	require.NoError(t, err)
	assert.Len(t, groups, 4)

	_, err = svc.CreateGroup(ctx, w.manager, dto.CreatePermissionGroupRequest{Name: "Escalated", IsAdmin: true})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.GetGroup(ctx, w.clerk, clerkGroupID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	assert.NotEmpty(t, svc.GetCatalog())
}

func TestPermissionGroups_DeleteAssignedGroupFails(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	authz := new(MockAuthorizer)
	authz.On("Authorize", mock.Anything, w.admin, domain.ModuleSettings, domain.ActionEdit).Return(nil)
	authz.On("InvalidateGroup", mock.Anything, mock.Anything).Return()
	svc := services.NewPermissionGroupService(w.store, w.store, services.WithPermissionGroupAuthorizer(authz))

	err := svc.DeleteGroup(ctx, w.admin, clerkGroupID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "assigned to 1 employee(s)")
	authz.AssertNotCalled(t, "InvalidateGroup", mock.Anything, clerkGroupID)

	empty, err := svc.CreateGroup(ctx, w.admin, dto.CreatePermissionGroupRequest{Name: "Temp"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteGroup(ctx, w.admin, empty.ID))
	authz.AssertCalled(t, "InvalidateGroup", mock.Anything, empty.ID)

	_, err = w.store.FindGroupByID(ctx, empty.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPermissionGroups_UpdateInvalidatesCachedGroup(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	authz := new(MockAuthorizer)
	authz.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	authz.On("InvalidateGroup", mock.Anything, viewerGroupID).Return().Once()
	svc := services.NewPermissionGroupService(w.store, w.store, services.WithPermissionGroupAuthorizer(authz))

	name := "Read only"
	updated, err := svc.UpdateGroup(ctx, w.admin, viewerGroupID, dto.UpdatePermissionGroupRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Read only", updated.Name)
	assert.True(t, updated.Grants.Has(domain.ModuleDashboard, domain.ActionView))
	assert.Equal(t, "admin", updated.LastUpdatedBy)
	authz.AssertExpectations(t)
}
