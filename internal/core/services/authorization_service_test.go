package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/adapters/cache"
	"github.com/SscSPs/travel_backoffice/internal/adapters/memory"
	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthorizationServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	world  *world
	cache  *cache.LRUGroupCache
	authz  portssvc.AuthorizationSvc
	groups portssvc.PermissionGroupSvcFacade
}

func (suite *AuthorizationServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.world = newWorld(suite.T())
	suite.cache = cache.NewLRUGroupCache(16, time.Hour)
	suite.authz = services.NewAuthorizationService(suite.world.store, services.WithPermissionGroupCache(suite.cache))
	suite.groups = services.NewPermissionGroupService(suite.world.store, suite.world.store,
		services.WithPermissionGroupAuthorizer(suite.authz))
}

func (suite *AuthorizationServiceTestSuite) TestAdminIsAllowedEverything() {
	for _, m := range domain.Catalog() {
		for _, a := range m.Actions {
			suite.True(suite.authz.Check(suite.ctx, suite.world.admin, m.Module, a).Allowed, domain.PermissionName(m.Module, a))
		}
	}
	// the admin flag wins even for names outside the catalog
	suite.True(suite.authz.Check(suite.ctx, suite.world.admin, "payroll", "view").Allowed)
}

func (suite *AuthorizationServiceTestSuite) TestGrantsAreExact() {
	clerk := suite.world.clerk
	suite.True(suite.authz.Check(suite.ctx, clerk, domain.ModuleTickets, domain.ActionEdit).Allowed)

	d := suite.authz.Check(suite.ctx, clerk, domain.ModuleTickets, domain.ActionDelete)
	suite.False(d.Allowed)
	suite.Equal("insufficient permission: tickets.delete", d.Reason)

	err := suite.authz.Authorize(suite.ctx, clerk, domain.ModuleTickets, domain.ActionDelete)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Contains(err.Error(), "tickets.delete")
}

func (suite *AuthorizationServiceTestSuite) TestUnknownNamesDeny() {
	d := suite.authz.Check(suite.ctx, suite.world.clerk, "payroll", domain.ActionView)
	suite.False(d.Allowed)
	suite.Equal("unknown module: payroll", d.Reason)

	d = suite.authz.Check(suite.ctx, suite.world.clerk, domain.ModuleTickets, "print")
	suite.False(d.Allowed)
	suite.Equal("unknown action: tickets.print", d.Reason)
}

func (suite *AuthorizationServiceTestSuite) TestInactivePrincipalIsDenied() {
	admin := suite.world.admin
	admin.Active = false
	d := suite.authz.Check(suite.ctx, admin, domain.ModuleTickets, domain.ActionView)
	suite.False(d.Allowed)
	suite.Equal("principal is inactive", d.Reason)
	suite.ErrorIs(suite.authz.Authorize(suite.ctx, admin, domain.ModuleTickets, domain.ActionView), apperrors.ErrForbidden)

	ep, err := suite.authz.EffectivePermissions(suite.ctx, admin)
	suite.Require().NoError(err)
	suite.False(ep.IsAdmin)
	suite.Empty(ep.Grants)
}

func (suite *AuthorizationServiceTestSuite) TestMissingGroupDenies() {
	orphan := suite.world.clerk
	orphan.PermissionGroupID = "grp-gone"
	d := suite.authz.Check(suite.ctx, orphan, domain.ModuleTickets, domain.ActionView)
	suite.False(d.Allowed)
	suite.Equal("permission group not found", d.Reason)
	suite.ErrorIs(suite.authz.Authorize(suite.ctx, orphan, domain.ModuleTickets, domain.ActionView), apperrors.ErrForbidden)
}

func (suite *AuthorizationServiceTestSuite) TestGroupChangeIsVisibleToNextCheck() {
	clerk := suite.world.clerk
	suite.False(suite.authz.Check(suite.ctx, clerk, domain.ModuleTickets, domain.ActionDelete).Allowed)
	suite.Equal(1, suite.cache.Len())

	grants := map[string][]string{"tickets": {"view", "add", "edit", "delete"}}
	_, err := suite.groups.UpdateGroup(suite.ctx, suite.world.admin, clerkGroupID, dto.UpdatePermissionGroupRequest{Grants: &grants})
	suite.Require().NoError(err)

	suite.True(suite.authz.Check(suite.ctx, clerk, domain.ModuleTickets, domain.ActionDelete).Allowed)
}

func (suite *AuthorizationServiceTestSuite) TestRevokedAdminLosesAccess() {
	notAdmin := false
	_, err := suite.groups.UpdateGroup(suite.ctx, suite.world.admin, adminGroupID, dto.UpdatePermissionGroupRequest{IsAdmin: &notAdmin})
	suite.Require().NoError(err)

	suite.False(suite.authz.Check(suite.ctx, suite.world.admin, domain.ModuleTickets, domain.ActionView).Allowed)
}

func (suite *AuthorizationServiceTestSuite) TestEffectivePermissions() {
	ep, err := suite.authz.EffectivePermissions(suite.ctx, suite.world.admin)
	suite.Require().NoError(err)
	suite.True(ep.IsAdmin)
	suite.Equal(domain.FullGrants(), ep.Grants)

	ep, err = suite.authz.EffectivePermissions(suite.ctx, suite.world.viewer)
	suite.Require().NoError(err)
	suite.Equal("Viewers", ep.GroupName)
	suite.Equal([]domain.Module{domain.ModuleTickets, domain.ModuleDashboard}, ep.Grants.Modules())
}

func TestAuthorizationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthorizationServiceTestSuite))
}

func TestAuthorization_StoreFailure(t *testing.T) {
	ctx := context.Background()
	reader := new(MockGroupReader)
	reader.On("FindGroupByID", mock.Anything, "grp-1").Return(nil, errors.New("connection reset")).Twice()
	authz := services.NewAuthorizationService(reader)

	p := domain.Principal{ID: "p1", PermissionGroupID: "grp-1", Active: true}
	assert.False(t, authz.Check(ctx, p, domain.ModuleTickets, domain.ActionView).Allowed)
	assert.ErrorIs(t, authz.Authorize(ctx, p, domain.ModuleTickets, domain.ActionView), apperrors.ErrStoreUnavailable)
	reader.AssertExpectations(t)
}

func TestAuthorization_CacheServesRepeatedChecks(t *testing.T) {
	ctx := context.Background()
	group := &domain.PermissionGroup{ID: "grp-1", Name: "Clerks", Grants: domain.Grants{domain.ModuleTickets: {domain.ActionView}}}
	reader := new(MockGroupReader)
	reader.On("FindGroupByID", mock.Anything, "grp-1").Return(group, nil).Once()
	authz := services.NewAuthorizationService(reader, services.WithPermissionGroupCache(cache.NewLRUGroupCache(4, time.Hour)))

	p := domain.Principal{ID: "p1", PermissionGroupID: "grp-1", Active: true}
	for i := 0; i < 3; i++ {
		assert.True(t, authz.Check(ctx, p, domain.ModuleTickets, domain.ActionView).Allowed)
	}
	reader.AssertExpectations(t)

	authz.InvalidateGroup(ctx, "grp-1")
	reader.On("FindGroupByID", mock.Anything, "grp-1").Return(group, nil).Once()
	authz.Check(ctx, p, domain.ModuleTickets, domain.ActionView)
	reader.AssertNumberOfCalls(t, "FindGroupByID", 2)
}

// stallingGroupReader holds the first read of groupID after it has loaded the
// row, until release is closed.
type stallingGroupReader struct {
	*memory.Store
	groupID string
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (r *stallingGroupReader) FindGroupByID(ctx context.Context, groupID string) (*domain.PermissionGroup, error) {
	group, err := r.Store.FindGroupByID(ctx, groupID)
	if groupID == r.groupID {
		r.once.Do(func() {
			close(r.loaded)
			<-r.release
		})
	}
	return group, err
}

func TestAuthorization_EditDuringCacheFillIsNotLost(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	require.NoError(t, w.store.UpdateGroup(ctx, domain.PermissionGroup{
		ID: clerkGroupID, Name: "Clerks", CatalogVersion: domain.CatalogVersion,
		Grants:      domain.Grants{domain.ModuleTickets: {domain.ActionView, domain.ActionAdd, domain.ActionEdit, domain.ActionDelete}},
		AuditFields: domain.NewAuditFields("seed", fixedNow),
	}))

	reader := &stallingGroupReader{
		Store:   w.store,
		groupID: clerkGroupID,
		loaded:  make(chan struct{}),
		release: make(chan struct{}),
	}
	groupCache := cache.NewLRUGroupCache(16, time.Hour)
	authz := services.NewAuthorizationService(reader, services.WithPermissionGroupCache(groupCache))
	groups := services.NewPermissionGroupService(w.store, w.store, services.WithPermissionGroupAuthorizer(authz))

	inFlight := make(chan domain.Decision, 1)
	go func() {
		inFlight <- authz.Check(ctx, w.clerk, domain.ModuleTickets, domain.ActionDelete)
	}()
	<-reader.loaded

	revoked := map[string][]string{"tickets": {"view"}}
	_, err := groups.UpdateGroup(ctx, w.admin, clerkGroupID, dto.UpdatePermissionGroupRequest{Grants: &revoked})
	require.NoError(t, err)

	close(reader.release)
	<-inFlight

	d := authz.Check(ctx, w.clerk, domain.ModuleTickets, domain.ActionDelete)
	assert.False(t, d.Allowed)
	assert.Equal(t, "insufficient permission: tickets.delete", d.Reason)
}

func TestBaseService_NilAuthorizerFailsClosed(t *testing.T) {
	svc := services.NewExchangeRateService(nil)
	_, err := svc.CurrentRate(context.Background(), domain.Principal{ID: "p1", Active: true})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
