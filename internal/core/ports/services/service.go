package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Authorization   AuthorizationSvc
	Bootstrap       BootstrapSvc
	Ledger          LedgerSvcFacade
	PermissionGroup PermissionGroupSvcFacade
	Principal       PrincipalSvcFacade
	ExchangeRate    ExchangeRateSvcFacade
	Report          ReportSvc
	Auth            AuthSvcFacade
	Token           TokenSvcFacade
	GoogleOAuth     GoogleOAuthSvcFacade
}
