package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/SscSPs/travel_backoffice/internal/adapters/memory"
	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBootstrap(store *memory.Store) (portssvc.BootstrapSvc, portssvc.IdentityProvider) {
	identity := services.NewPasswordIdentityProvider(store, 0)
	return services.NewBootstrapService(store, store, identity, services.WithBootstrapClock(fixedClock)), identity
}

func requireInitError(t *testing.T, err error) *apperrors.InitializationError {
	t.Helper()
	var initErr *apperrors.InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.ErrorIs(t, err, apperrors.ErrInitialization)
	return initErr
}

func TestBootstrap_CreatesFirstAdministrator(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, identity := newBootstrap(store)

	empty, err := svc.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	admin, err := svc.Initialize(ctx, " Owner@Agency.example ", "correct-horse", "  Owner ")
	require.NoError(t, err)
	assert.Equal(t, "owner@agency.example", admin.Email)
	assert.Equal(t, "Owner", admin.Name)
	assert.True(t, admin.Active)
	assert.Equal(t, fixedNow, admin.CreatedAt)

	group, err := store.FindGroupByID(ctx, admin.PermissionGroupID)
	require.NoError(t, err)
	assert.Equal(t, domain.SuperAdminGroupName, group.Name)
	assert.True(t, group.IsAdmin)

	identityID, err := identity.VerifyCredential(ctx, "owner@agency.example", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, admin.IdentityID, identityID)

	authz := services.NewAuthorizationService(store)
	assert.True(t, authz.Check(ctx, *admin, domain.ModuleSettings, domain.ActionEdit).Allowed)

	empty, err = svc.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestBootstrap_SecondCallIsRejected(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, _ := newBootstrap(store)

	_, err := svc.Initialize(ctx, "owner@agency.example", "correct-horse", "Owner")
	require.NoError(t, err)

	_, err = svc.Initialize(ctx, "other@agency.example", "correct-horse", "Other")
	initErr := requireInitError(t, err)
	assert.True(t, initErr.AlreadyInitialized())
	assert.Equal(t, apperrors.StageCheck, initErr.Stage)

	_, err = store.FindCredentialByEmail(ctx, "other@agency.example")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBootstrap_InvalidInput(t *testing.T) {
	tests := []struct {
		name, email, password, fullName, reason string
	}{
		{"bad email", "not-an-email", "correct-horse", "Owner", "invalid email address"},
		{"short password", "owner@agency.example", "short", "Owner", "password must be at least 8 characters"},
		{"missing name", "owner@agency.example", "correct-horse", "   ", "missing name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			svc, _ := newBootstrap(store)

			_, err := svc.Initialize(context.Background(), tt.email, tt.password, tt.fullName)
			initErr := requireInitError(t, err)
			assert.Equal(t, tt.reason, initErr.Reason)
			assert.ErrorIs(t, err, apperrors.ErrValidation)

			empty, err := svc.IsEmpty(context.Background())
			require.NoError(t, err)
			assert.True(t, empty)
		})
	}
}

func TestBootstrap_ConcurrentCallsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, _ := newBootstrap(store)

	const racers = 8
	var wg sync.WaitGroup
	results := make([]error, racers)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = svc.Initialize(ctx, fmt.Sprintf("admin%d@agency.example", i), "correct-horse", "Admin")
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for i, err := range results {
		if err == nil {
			winners++
			continue
		}
		initErr := requireInitError(t, err)
		assert.True(t, initErr.AlreadyInitialized(), "racer %d: %v", i, err)
		assert.Empty(t, initErr.IdentityID)

		// losers leave no credential behind
		_, findErr := store.FindCredentialByEmail(ctx, fmt.Sprintf("admin%d@agency.example", i))
		assert.ErrorIs(t, findErr, apperrors.ErrNotFound)
	}
	assert.Equal(t, 1, winners)

	count, err := store.CountPrincipals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	groups, err := store.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestBootstrap_PersistFailureRemovesCredential(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	systemRepo := new(MockSystemRepo)
	identity := new(MockIdentityProvider)
	svc := services.NewBootstrapService(store, systemRepo, identity)

	systemRepo.On("FindSystemState", mock.Anything).Return(&domain.SystemState{}, nil)
	systemRepo.On("InitializeSystem", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: connection refused", apperrors.ErrStoreUnavailable)).Once()
	identity.On("CreateCredential", mock.Anything, "owner@agency.example", "correct-horse").Return("cred-1", nil).Once()
	identity.On("DeleteCredential", mock.Anything, "cred-1").Return(nil).Once()

	_, err := svc.Initialize(ctx, "owner@agency.example", "correct-horse", "Owner")
	initErr := requireInitError(t, err)
	assert.Equal(t, apperrors.StagePersist, initErr.Stage)
	assert.Empty(t, initErr.IdentityID)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	identity.AssertExpectations(t)
	systemRepo.AssertExpectations(t)
}

func TestBootstrap_FailedCompensationReportsOrphan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := memory.NewStore()
	systemRepo := new(MockSystemRepo)
	identity := new(MockIdentityProvider)
	svc := services.NewBootstrapService(store, systemRepo, identity)

	cleanupErr := errors.New("identity provider down")
	systemRepo.On("FindSystemState", mock.Anything).Return(&domain.SystemState{}, nil)
	systemRepo.On("InitializeSystem", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, errors.New("disk full")).Once()
	identity.On("CreateCredential", mock.Anything, mock.Anything, mock.Anything).Return("cred-9", nil).Once()
	identity.On("DeleteCredential", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), "cred-9").
		Return(cleanupErr).Once()

	_, err := svc.Initialize(ctx, "owner@agency.example", "correct-horse", "Owner")
	initErr := requireInitError(t, err)
	assert.Equal(t, apperrors.StageCompensate, initErr.Stage)
	assert.Equal(t, "cred-9", initErr.IdentityID)
	assert.ErrorIs(t, err, cleanupErr)
	identity.AssertExpectations(t)
}

func TestBootstrap_DuplicateCredentialAfterLostRace(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	identity := new(MockIdentityProvider)
	svc := services.NewBootstrapService(store, store, identity)

	// the competing call completes while this one creates its credential
	identity.On("CreateCredential", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			group := domain.NewSuperAdminGroup("g-winner", "p-winner", fixedNow)
			_, err := store.InitializeSystem(ctx, group, domain.Principal{ID: "p-winner", Name: "W", Email: "w@agency.example", Active: true})
			require.NoError(t, err)
		}).
		Return("", fmt.Errorf("%w: a credential already exists for this email", apperrors.ErrDuplicate)).Once()

	_, err := svc.Initialize(ctx, "owner@agency.example", "correct-horse", "Owner")
	initErr := requireInitError(t, err)
	assert.True(t, initErr.AlreadyInitialized())
	assert.Equal(t, apperrors.StageCredential, initErr.Stage)
}
