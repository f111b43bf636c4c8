package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// LedgerReader defines read operations for ledger entries
type LedgerReader interface {
	// FindEntryByID retrieves an entry, including removed ones.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// ListEntries retrieves entries matching filter, newest entry date first, using
	// keyset pagination. The returned token is nil on the last page.
	ListEntries(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, *string, error)
}

// LedgerWriter defines write operations for ledger entries. Each call writes the
// entry and its passenger lines atomically.
type LedgerWriter interface {
	// SaveEntry persists a new entry.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry) error

	// UpdateEntry replaces a persisted entry with the full merged record.
	UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error

	// MarkEntryRemoved moves a persisted entry to REMOVED. Returns apperrors.ErrNotFound
	// when the entry does not exist or is already removed.
	MarkEntryRemoved(ctx context.Context, entryID string, removedAt time.Time, removedBy string) error
}

// LedgerSubscriber pushes change events for matching entries until ctx is done.
type LedgerSubscriber interface {
	SubscribeEntries(ctx context.Context, filter domain.LedgerFilter) (<-chan domain.LedgerEvent, error)
}

// LedgerRepositoryFacade combines all ledger repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
	LedgerSubscriber
}

// ReportingRepositoryFacade reads entries for aggregation.
type ReportingRepositoryFacade interface {
	// FindEntriesByEntryDate returns persisted entries with from <= entryDate < to.
	FindEntriesByEntryDate(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error)
}

// ExchangeRateReader defines read operations for the exchange rate history
type ExchangeRateReader interface {
	// FindLatestRate returns the most recently recorded rate.
	FindLatestRate(ctx context.Context) (*domain.ExchangeRate, error)

	// ListRecentRates returns at most limit rates, newest first.
	ListRecentRates(ctx context.Context, limit int) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for the exchange rate history
type ExchangeRateWriter interface {
	// AppendRate adds a point to the history. Points are never updated.
	AppendRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange rate repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
