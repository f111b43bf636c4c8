package services

import (
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// groupCache may be nil, in which case every check reads the store.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, groupCache portsrepo.PermissionGroupCache) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}
	timeout := cfg.StoreTimeout

	// The authorization engine comes first since every other service consults it
	authOpts := []AuthorizationOption{WithAuthorizationStoreTimeout(timeout)}
	if groupCache != nil {
		authOpts = append(authOpts, WithPermissionGroupCache(groupCache))
	}
	container.Authorization = NewAuthorizationService(repos.GroupRepo, authOpts...)
	authorizer := container.Authorization

	identity := NewPasswordIdentityProvider(repos.CredentialRepo, timeout)

	container.Bootstrap = NewBootstrapService(
		repos.PrincipalRepo,
		repos.SystemRepo,
		identity,
		WithBootstrapStoreTimeout(timeout),
	)
	container.Ledger = NewLedgerService(
		repos.LedgerRepo,
		WithLedgerAuthorizer(authorizer),
		WithLedgerStoreTimeout(timeout),
	)
	container.PermissionGroup = NewPermissionGroupService(
		repos.GroupRepo,
		repos.PrincipalRepo,
		WithPermissionGroupAuthorizer(authorizer),
		WithPermissionGroupStoreTimeout(timeout),
	)
	container.Principal = NewPrincipalService(
		repos.PrincipalRepo,
		repos.GroupRepo,
		identity,
		WithPrincipalAuthorizer(authorizer),
		WithPrincipalStoreTimeout(timeout),
	)
	container.ExchangeRate = NewExchangeRateService(
		repos.ExchangeRateRepo,
		WithExchangeRateAuthorizer(authorizer),
		WithExchangeRateHistoryLimit(cfg.ExchangeRateHistoryLimit),
		WithExchangeRateStoreTimeout(timeout),
	)
	container.Report = NewReportService(
		repos.ReportingRepo,
		WithReportAuthorizer(authorizer),
		WithReportStoreTimeout(timeout),
	)

	container.Auth = NewAuthService(repos.PrincipalRepo, identity, timeout)
	container.Token = NewTokenService(cfg)
	container.GoogleOAuth = NewGoogleOAuthService(cfg)

	return container
}
