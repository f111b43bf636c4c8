package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	GroupRepo        PermissionGroupRepositoryFacade
	PrincipalRepo    PrincipalRepositoryFacade
	CredentialRepo   CredentialRepositoryFacade
	SystemRepo       SystemStateRepositoryFacade
	LedgerRepo       LedgerRepositoryFacade
	ExchangeRateRepo ExchangeRateRepositoryFacade
	ReportingRepo    ReportingRepositoryFacade
}
