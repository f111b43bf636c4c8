package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/google/uuid"
)

// DefaultListLimit is the page size used when a caller does not ask for one.
const DefaultListLimit = 20

// ledgerService records ticket sales, changes and refunds. Every write is
// validated as a whole record before it reaches the store.
type ledgerService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// LedgerServiceOption configures the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerAuthorizer sets the authorization engine consulted before every operation.
func WithLedgerAuthorizer(authorizer portssvc.AuthorizationSvc) LedgerServiceOption {
	return func(s *ledgerService) {
		s.Authorizer = authorizer
	}
}

// WithLedgerStoreTimeout bounds each store call.
func WithLedgerStoreTimeout(d time.Duration) LedgerServiceOption {
	return func(s *ledgerService) {
		s.StoreTimeout = d
	}
}

// WithLedgerClock overrides the time source.
func WithLedgerClock(clock func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.Clock = clock
	}
}

// NewLedgerService creates the ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{ledgerRepo: ledgerRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) CreateSale(ctx context.Context, actor domain.Principal, req dto.CreateSaleRequest) (*domain.LedgerEntry, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleTickets, domain.ActionAdd); err != nil {
		return nil, err
	}
	now := s.now()
	entry := domain.LedgerEntry{
		ID:          uuid.NewString(),
		PNR:         req.PNR,
		Kind:        domain.KindSale,
		Source:      req.Source,
		Beneficiary: req.Beneficiary,
		Currency:    domain.Currency(req.Currency),
		IssueDate:   derefTime(req.IssueDate),
		EntryDate:   derefTime(req.EntryDate),
		Passengers:  toPassengerLines(req.Passengers),
		Notes:       req.Notes,
		Status:      domain.StatusPersisted,
		AuditFields: domain.NewAuditFields(actor.ID, now),
	}
	if entry.EntryDate.IsZero() {
		entry.EntryDate = now
	}
	if entry.IssueDate.IsZero() {
		entry.IssueDate = entry.EntryDate
	}
	return s.saveNew(ctx, entry)
}

func (s *ledgerService) CreateChange(ctx context.Context, actor domain.Principal, req dto.CreateChangeRequest) (*domain.LedgerEntry, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleTickets, domain.ActionAdd); err != nil {
		return nil, err
	}
	now := s.now()
	entry := domain.LedgerEntry{
		ID:                  uuid.NewString(),
		PNR:                 req.PNR,
		Kind:                domain.KindChange,
		Source:              req.Source,
		Beneficiary:         req.Beneficiary,
		SourceCurrency:      domain.Currency(req.SourceCurrency),
		BeneficiaryCurrency: domain.Currency(req.BeneficiaryCurrency),
		SourceAmount:        req.SourceAmount,
		BeneficiaryAmount:   req.BeneficiaryAmount,
		IssueDate:           derefTime(req.ChangeDate),
		EntryDate:           derefTime(req.EntryDate),
		Notes:               req.Notes,
		Status:              domain.StatusPersisted,
		AuditFields:         domain.NewAuditFields(actor.ID, now),
	}
	if entry.EntryDate.IsZero() {
		entry.EntryDate = now
	}
	return s.saveNew(ctx, entry)
}

func (s *ledgerService) CreateRefund(ctx context.Context, actor domain.Principal, req dto.CreateRefundRequest) (*domain.LedgerEntry, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleTickets, domain.ActionAdd); err != nil {
		return nil, err
	}
	now := s.now()
	entry := domain.LedgerEntry{
		ID:            uuid.NewString(),
		PNR:           req.PNR,
		Kind:          domain.KindRefund,
		Source:        req.Source,
		Beneficiary:   req.Beneficiary,
		Currency:      domain.Currency(req.Currency),
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		IssueDate:     derefTime(req.IssueDate),
		EntryDate:     derefTime(req.EntryDate),
		Notes:         req.Notes,
		Status:        domain.StatusPersisted,
		AuditFields:   domain.NewAuditFields(actor.ID, now),
	}
	if entry.EntryDate.IsZero() {
		entry.EntryDate = now
	}
	return s.saveNew(ctx, entry)
}

// saveNew validates a draft and persists it. Invalid drafts never reach the store.
func (s *ledgerService) saveNew(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error) {
	entry.Normalize()
	if err := entry.Validate(); err != nil {
		s.LogDebug(ctx, "Rejected ledger entry", slog.String("kind", string(entry.Kind)), slog.String("error", err.Error()))
		return nil, err
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.ledgerRepo.SaveEntry(storeCtx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save ledger entry", slog.String("entry_id", entry.ID))
		return nil, fmt.Errorf("failed to save ledger entry: %w", err)
	}

	attrs := []any{
		slog.String("entry_id", entry.ID),
		slog.String("kind", string(entry.Kind)),
		slog.String("pnr", entry.PNR),
	}
	if entry.CurrencyMismatch() {
		attrs = append(attrs, slog.Bool("currency_mismatch", true))
	}
	s.LogInfo(ctx, "Ledger entry created", attrs...)
	return &entry, nil
}

// Update merges the patch onto the persisted record and re-validates the whole
// result. A rejected update leaves the stored record untouched.
func (s *ledgerService) Update(ctx context.Context, actor domain.Principal, entryID string, req dto.UpdateLedgerEntryRequest) (*domain.LedgerEntry, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleTickets, domain.ActionEdit); err != nil {
		return nil, err
	}

	current, err := s.findLive(ctx, entryID)
	if err != nil {
		return nil, err
	}

	merged := current.Clone()
	if err := applyLedgerPatch(&merged, req); err != nil {
		return nil, err
	}
	merged.Touch(actor.ID, s.now())
	merged.Normalize()
	if err := merged.Validate(); err != nil {
		s.LogDebug(ctx, "Rejected ledger update", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.ledgerRepo.UpdateEntry(storeCtx, merged); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update ledger entry", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to update ledger entry: %w", err)
	}
	s.LogInfo(ctx, "Ledger entry updated", slog.String("entry_id", entryID))
	return &merged, nil
}

// Delete removes an entry. Removing an unknown or already removed entry succeeds.
func (s *ledgerService) Delete(ctx context.Context, actor domain.Principal, entryID string) error {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleTickets, domain.ActionDelete); err != nil {
		return err
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.ledgerRepo.MarkEntryRemoved(storeCtx, entryID, s.now(), actor.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "Ledger entry already absent", slog.String("entry_id", entryID))
			return nil
		}
		s.LogError(ctx, err, "Failed to remove ledger entry", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to remove ledger entry: %w", err)
	}
	s.LogInfo(ctx, "Ledger entry removed", slog.String("entry_id", entryID))
	return nil
}

func (s *ledgerService) GetEntry(ctx context.Context, actor domain.Principal, entryID string) (*domain.LedgerEntry, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleTickets, domain.ActionView); err != nil {
		return nil, err
	}
	return s.findLive(ctx, entryID)
}

func (s *ledgerService) ListEntries(ctx context.Context, actor domain.Principal, params dto.ListLedgerEntriesParams) (*dto.ListLedgerEntriesResponse, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleTickets, domain.ActionView); err != nil {
		return nil, err
	}
	filter := params.ToFilter()
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	entries, nextToken, err := s.ledgerRepo.ListEntries(storeCtx, filter)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list ledger entries")
		}
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	resp := dto.ToListLedgerEntriesResponse(entries, nextToken)
	return &resp, nil
}

// Subscribe streams change events matching params until ctx is done.
func (s *ledgerService) Subscribe(ctx context.Context, actor domain.Principal, params dto.ListLedgerEntriesParams) (<-chan domain.LedgerEvent, error) {
	if err := s.AuthorizePrincipal(ctx, actor, domain.ModuleTickets, domain.ActionView); err != nil {
		return nil, err
	}
	events, err := s.ledgerRepo.SubscribeEntries(ctx, params.ToFilter())
	if err != nil {
		s.LogError(ctx, err, "Failed to subscribe to ledger events")
		return nil, fmt.Errorf("failed to subscribe to ledger events: %w", err)
	}
	s.LogDebug(ctx, "Ledger subscription opened", slog.String("principal_id", actor.ID))
	return events, nil
}

// findLive loads an entry and hides removed ones.
func (s *ledgerService) findLive(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	entry, err := s.ledgerRepo.FindEntryByID(storeCtx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load ledger entry", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to load ledger entry: %w", err)
	}
	if entry.Status == domain.StatusRemoved {
		return nil, apperrors.NewNotFoundError("ledger entry not found")
	}
	return entry, nil
}

// applyLedgerPatch copies the present fields of req onto entry. Fields that do
// not belong to the entry's kind are rejected rather than silently dropped.
func applyLedgerPatch(entry *domain.LedgerEntry, req dto.UpdateLedgerEntryRequest) error {
	if req.PNR != nil {
		entry.PNR = *req.PNR
	}
	if req.Source != nil {
		entry.Source = *req.Source
	}
	if req.Beneficiary != nil {
		entry.Beneficiary = *req.Beneficiary
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}
	if req.EntryDate != nil {
		entry.EntryDate = *req.EntryDate
	}
	if req.IssueDate != nil {
		entry.IssueDate = *req.IssueDate
	}

	isChange := entry.Kind == domain.KindChange
	if req.Currency != nil {
		if isChange {
			return apperrors.Validationf("currency does not apply to %s entries", entry.Kind)
		}
		entry.Currency = domain.Currency(*req.Currency)
	}
	if req.SourceCurrency != nil || req.BeneficiaryCurrency != nil || req.SourceAmount != nil || req.BeneficiaryAmount != nil {
		if !isChange {
			return apperrors.Validationf("change amounts do not apply to %s entries", entry.Kind)
		}
		if req.SourceCurrency != nil {
			entry.SourceCurrency = domain.Currency(*req.SourceCurrency)
		}
		if req.BeneficiaryCurrency != nil {
			entry.BeneficiaryCurrency = domain.Currency(*req.BeneficiaryCurrency)
		}
		if req.SourceAmount != nil {
			entry.SourceAmount = *req.SourceAmount
		}
		if req.BeneficiaryAmount != nil {
			entry.BeneficiaryAmount = *req.BeneficiaryAmount
		}
	}
	if req.PurchasePrice != nil || req.SalePrice != nil {
		if entry.Kind != domain.KindRefund {
			return apperrors.Validationf("prices do not apply to %s entries", entry.Kind)
		}
		if req.PurchasePrice != nil {
			entry.PurchasePrice = *req.PurchasePrice
		}
		if req.SalePrice != nil {
			entry.SalePrice = *req.SalePrice
		}
	}
	if req.Passengers != nil {
		if entry.Kind != domain.KindSale {
			return apperrors.Validationf("passengers do not apply to %s entries", entry.Kind)
		}
		known := make(map[string]struct{}, len(entry.Passengers))
		for _, p := range entry.Passengers {
			known[p.ID] = struct{}{}
		}
		lines := toPassengerLines(*req.Passengers)
		for i, r := range *req.Passengers {
			if _, ok := known[r.ID]; ok && r.ID != "" {
				lines[i].ID = r.ID
				delete(known, r.ID)
			}
		}
		entry.Passengers = lines
	}
	return nil
}

func toPassengerLines(reqs []dto.PassengerLineRequest) []domain.PassengerLine {
	lines := make([]domain.PassengerLine, 0, len(reqs))
	for _, r := range reqs {
		lines = append(lines, domain.PassengerLine{
			ID:             uuid.NewString(),
			Name:           r.Name,
			PassportNumber: r.PassportNumber,
			PassengerType:  domain.PassengerType(r.PassengerType),
			PurchasePrice:  r.PurchasePrice,
			SalePrice:      r.SalePrice,
			TicketNumber:   r.TicketNumber,
		})
	}
	return lines
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
