package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

// reportService aggregates profit per currency over a period.
type reportService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepositoryFacade
}

// ReportServiceOption configures the report service
type ReportServiceOption func(*reportService)

// WithReportAuthorizer sets the authorization engine.
func WithReportAuthorizer(authorizer portssvc.AuthorizationSvc) ReportServiceOption {
	return func(s *reportService) {
		s.Authorizer = authorizer
	}
}

// WithReportStoreTimeout bounds each store call.
func WithReportStoreTimeout(d time.Duration) ReportServiceOption {
	return func(s *reportService) {
		s.StoreTimeout = d
	}
}

// NewReportService creates a new reporting service
func NewReportService(reportingRepo portsrepo.ReportingRepositoryFacade, options ...ReportServiceOption) portssvc.ReportSvc {
	svc := &reportService{reportingRepo: reportingRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportSvc = (*reportService)(nil)

// ProfitSummary totals entries whose entry date falls within [From, To], both
// days inclusive. Mismatched changes are counted, never summed.
func (s *reportService) ProfitSummary(ctx context.Context, actor domain.Principal, params dto.ProfitReportParams) (*domain.ProfitSummary, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleReports, domain.ActionView); err != nil {
		return nil, err
	}
	if params.From.IsZero() || params.To.IsZero() {
		return nil, apperrors.Validationf("from and to are required")
	}
	if params.From.After(params.To) {
		return nil, apperrors.Validationf("from must not be after to")
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	entries, err := s.reportingRepo.FindEntriesByEntryDate(storeCtx, params.From, params.To.AddDate(0, 0, 1))
	if err != nil {
		s.LogError(ctx, err, "Failed to load entries for profit report")
		return nil, fmt.Errorf("failed to load entries for report: %w", err)
	}

	summary := domain.Summarize(params.From, params.To, entries)
	s.LogDebug(ctx, "Profit summary computed",
		slog.Int("entries", len(entries)),
		slog.Int("mismatched_changes", summary.MismatchedChanges))
	return &summary, nil
}
