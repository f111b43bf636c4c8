package services

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

// PrincipalReaderSvc defines read operations for employees
type PrincipalReaderSvc interface {
	// ResolvePrincipal loads the acting principal for an authenticated request.
	// It performs no authorization; an unknown id yields apperrors.ErrUnauthorized.
	ResolvePrincipal(ctx context.Context, principalID string) (*domain.Principal, error)

	GetEmployee(ctx context.Context, actor domain.Principal, employeeID string) (*domain.Principal, error)
	ListEmployees(ctx context.Context, actor domain.Principal, params dto.ListEmployeesParams) ([]domain.Principal, error)
}

// PrincipalWriterSvc defines write operations for employees
type PrincipalWriterSvc interface {
	CreateEmployee(ctx context.Context, actor domain.Principal, req dto.CreateEmployeeRequest) (*domain.Principal, error)
	UpdateEmployee(ctx context.Context, actor domain.Principal, employeeID string, req dto.UpdateEmployeeRequest) (*domain.Principal, error)

	// DeactivateEmployee sets Active=false. Employees are never hard deleted.
	DeactivateEmployee(ctx context.Context, actor domain.Principal, employeeID string) error
}

// PrincipalSvcFacade combines all employee service interfaces
type PrincipalSvcFacade interface {
	PrincipalReaderSvc
	PrincipalWriterSvc
}

// ExchangeRateSvcFacade manages the USD->IQD rate history.
type ExchangeRateSvcFacade interface {
	RecordRate(ctx context.Context, actor domain.Principal, req dto.RecordExchangeRateRequest) (*domain.ExchangeRate, error)
	CurrentRate(ctx context.Context, actor domain.Principal) (*domain.ExchangeRate, error)

	// History returns the most recent points, newest first. limit is clamped to the configured maximum.
	History(ctx context.Context, actor domain.Principal, limit int) ([]domain.ExchangeRate, error)
}
