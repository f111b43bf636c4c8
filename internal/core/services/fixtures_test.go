package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/adapters/memory"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// Group ids seeded by newWorld.
const (
	adminGroupID   = "grp-admin"
	clerkGroupID   = "grp-clerk"
	viewerGroupID  = "grp-viewer"
	managerGroupID = "grp-manager"
)

// world is a memory store seeded with one principal per group.
type world struct {
	store   *memory.Store
	admin   domain.Principal
	clerk   domain.Principal
	viewer  domain.Principal
	manager domain.Principal
}

func seedPrincipal(t *testing.T, s *memory.Store, id, groupID string) domain.Principal {
	t.Helper()
	p := domain.Principal{
		ID:                id,
		Name:              id,
		Email:             id + "@agency.example",
		PermissionGroupID: groupID,
		Active:            true,
		AuditFields:       domain.NewAuditFields("seed", fixedNow),
	}
	require.NoError(t, s.SavePrincipal(context.Background(), p))
	return p
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	t.Cleanup(s.Close)

	groups := []domain.PermissionGroup{
		{ID: adminGroupID, Name: "Admins", IsAdmin: true},
		{ID: clerkGroupID, Name: "Clerks", Grants: domain.Grants{
			domain.ModuleTickets: {domain.ActionView, domain.ActionAdd, domain.ActionEdit},
		}},
		{ID: viewerGroupID, Name: "Viewers", Grants: domain.Grants{
			domain.ModuleTickets:   {domain.ActionView},
			domain.ModuleDashboard: {domain.ActionView},
		}},
		{ID: managerGroupID, Name: "Managers", Grants: domain.Grants{
			domain.ModuleEmployees: {domain.ActionView, domain.ActionAdd, domain.ActionEdit, domain.ActionDelete},
			domain.ModuleSettings:  {domain.ActionView},
			domain.ModuleReports:   {domain.ActionView},
		}},
	}
	for _, g := range groups {
		g.CatalogVersion = domain.CatalogVersion
		g.AuditFields = domain.NewAuditFields("seed", fixedNow)
		require.NoError(t, s.SaveGroup(ctx, g))
	}

	return &world{
		store:   s,
		admin:   seedPrincipal(t, s, "admin", adminGroupID),
		clerk:   seedPrincipal(t, s, "clerk", clerkGroupID),
		viewer:  seedPrincipal(t, s, "viewer", viewerGroupID),
		manager: seedPrincipal(t, s, "manager", managerGroupID),
	}
}

// --- Mock AuthorizationSvc ---
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Check(ctx context.Context, principal domain.Principal, module domain.Module, action domain.Action) domain.Decision {
	args := m.Called(ctx, principal, module, action)
	return args.Get(0).(domain.Decision)
}

func (m *MockAuthorizer) Authorize(ctx context.Context, principal domain.Principal, module domain.Module, action domain.Action) error {
	args := m.Called(ctx, principal, module, action)
	return args.Error(0)
}

func (m *MockAuthorizer) EffectivePermissions(ctx context.Context, principal domain.Principal) (*domain.EffectivePermissions, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EffectivePermissions), args.Error(1)
}

func (m *MockAuthorizer) InvalidateGroup(ctx context.Context, groupID string) {
	m.Called(ctx, groupID)
}

var _ portssvc.AuthorizationSvc = (*MockAuthorizer)(nil)

// --- Mock IdentityProvider ---
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CreateCredential(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) VerifyCredential(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) DeleteCredential(ctx context.Context, identityID string) error {
	args := m.Called(ctx, identityID)
	return args.Error(0)
}

var _ portssvc.IdentityProvider = (*MockIdentityProvider)(nil)

// --- Mock PermissionGroupReader ---
type MockGroupReader struct {
	mock.Mock
}

func (m *MockGroupReader) FindGroupByID(ctx context.Context, groupID string) (*domain.PermissionGroup, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PermissionGroup), args.Error(1)
}

func (m *MockGroupReader) FindGroupByName(ctx context.Context, name string) (*domain.PermissionGroup, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PermissionGroup), args.Error(1)
}

func (m *MockGroupReader) ListGroups(ctx context.Context) ([]domain.PermissionGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PermissionGroup), args.Error(1)
}

// --- Mock SystemStateRepositoryFacade ---
type MockSystemRepo struct {
	mock.Mock
}

func (m *MockSystemRepo) FindSystemState(ctx context.Context) (*domain.SystemState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemState), args.Error(1)
}

func (m *MockSystemRepo) InitializeSystem(ctx context.Context, group domain.PermissionGroup, principal domain.Principal) (*domain.PermissionGroup, error) {
	args := m.Called(ctx, group, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PermissionGroup), args.Error(1)
}
