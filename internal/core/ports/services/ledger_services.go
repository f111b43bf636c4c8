package services

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

// LedgerReaderSvc defines read operations for ledger entries
type LedgerReaderSvc interface {
	// GetEntry retrieves a single persisted entry. Removed entries read as not found.
	GetEntry(ctx context.Context, actor domain.Principal, entryID string) (*domain.LedgerEntry, error)

	// ListEntries retrieves a page of persisted entries.
	ListEntries(ctx context.Context, actor domain.Principal, params dto.ListLedgerEntriesParams) (*dto.ListLedgerEntriesResponse, error)
}

// LedgerWriterSvc defines the ticket operations. Every method authorizes the actor
// before touching the store and validates the full record before writing.
type LedgerWriterSvc interface {
	CreateSale(ctx context.Context, actor domain.Principal, req dto.CreateSaleRequest) (*domain.LedgerEntry, error)
	CreateChange(ctx context.Context, actor domain.Principal, req dto.CreateChangeRequest) (*domain.LedgerEntry, error)
	CreateRefund(ctx context.Context, actor domain.Principal, req dto.CreateRefundRequest) (*domain.LedgerEntry, error)

	// Update merges the patch into the persisted entry and re-validates the result.
	Update(ctx context.Context, actor domain.Principal, entryID string, req dto.UpdateLedgerEntryRequest) (*domain.LedgerEntry, error)

	// Delete removes the entry. Deleting a missing or already removed entry succeeds.
	Delete(ctx context.Context, actor domain.Principal, entryID string) error
}

// LedgerStreamSvc delivers realtime change events.
type LedgerStreamSvc interface {
	Subscribe(ctx context.Context, actor domain.Principal, params dto.ListLedgerEntriesParams) (<-chan domain.LedgerEvent, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerStreamSvc
}

// ReportSvc builds read-only projections over the ledger.
type ReportSvc interface {
	ProfitSummary(ctx context.Context, actor domain.Principal, params dto.ProfitReportParams) (*domain.ProfitSummary, error)
}
