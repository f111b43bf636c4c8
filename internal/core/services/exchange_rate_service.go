package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/google/uuid"
)

// DefaultRateHistoryLimit caps the rate history when none is configured.
const DefaultRateHistoryLimit = 30

// exchangeRateService keeps the append-only USD->IQD rate history.
type exchangeRateService struct {
	BaseService
	rateRepo     portsrepo.ExchangeRateRepositoryFacade
	historyLimit int
}

// ExchangeRateServiceOption configures the exchange rate service
type ExchangeRateServiceOption func(*exchangeRateService)

// WithExchangeRateAuthorizer sets the authorization engine.
func WithExchangeRateAuthorizer(authorizer portssvc.AuthorizationSvc) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.Authorizer = authorizer
	}
}

// WithExchangeRateHistoryLimit caps History.
func WithExchangeRateHistoryLimit(limit int) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.historyLimit = limit
	}
}

// WithExchangeRateStoreTimeout bounds each store call.
func WithExchangeRateStoreTimeout(d time.Duration) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.StoreTimeout = d
	}
}

// NewExchangeRateService creates a new exchange rate service
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, options ...ExchangeRateServiceOption) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{rateRepo: rateRepo, historyLimit: DefaultRateHistoryLimit}
	for _, option := range options {
		option(svc)
	}
	if svc.historyLimit <= 0 {
		svc.historyLimit = DefaultRateHistoryLimit
	}
	return svc
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

func (s *exchangeRateService) RecordRate(ctx context.Context, actor domain.Principal, req dto.RecordExchangeRateRequest) (*domain.ExchangeRate, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleAccounts, domain.ActionCurrency); err != nil {
		return nil, err
	}
	rate := domain.ExchangeRate{
		ID:         uuid.NewString(),
		Rate:       req.Rate,
		RecordedAt: s.now(),
		RecordedBy: actor.ID,
	}
	if err := rate.Validate(); err != nil {
		return nil, err
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.rateRepo.AppendRate(storeCtx, rate); err != nil {
		s.LogError(ctx, err, "Failed to record exchange rate")
		return nil, fmt.Errorf("failed to record exchange rate: %w", err)
	}
	s.LogInfo(ctx, "Exchange rate recorded", slog.String("rate_id", rate.ID), slog.String("rate", rate.Rate.String()))
	return &rate, nil
}

func (s *exchangeRateService) CurrentRate(ctx context.Context, actor domain.Principal) (*domain.ExchangeRate, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleDashboard, domain.ActionView); err != nil {
		return nil, err
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	rate, err := s.rateRepo.FindLatestRate(storeCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current exchange rate: %w", err)
	}
	return rate, nil
}

// History returns the newest rates first, at most the configured limit.
func (s *exchangeRateService) History(ctx context.Context, actor domain.Principal, limit int) ([]domain.ExchangeRate, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleDashboard, domain.ActionView); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	rates, err := s.rateRepo.ListRecentRates(storeCtx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return rates, nil
}
