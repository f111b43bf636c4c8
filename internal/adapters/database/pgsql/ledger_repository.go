package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/adapters/events"
	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/SscSPs/travel_backoffice/internal/models"
	"github.com/SscSPs/travel_backoffice/internal/utils/mapping"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerChannel is the NOTIFY channel carrying ledger events as JSON.
const LedgerChannel = "ledger_events"

const listenerRetryDelay = 2 * time.Second

const entryColumns = `entry_id, pnr, kind, source, beneficiary, currency_code, source_currency, beneficiary_currency,
	source_amount, beneficiary_amount, purchase_price, sale_price, issue_date, entry_date, notes, status,
	created_at, created_by, last_updated_at, last_updated_by`

const passengerColumns = `passenger_id, entry_id, position, name, passport_number, passenger_type, purchase_price, sale_price, ticket_number`

// PgxLedgerRepository stores ledger entries and their passengers. Every write
// runs in one transaction that also emits a NOTIFY, so subscribers only hear
// about committed changes.
type PgxLedgerRepository struct {
	BaseRepository
	broker      *events.Broker
	listenCtx   context.Context
	listenStart sync.Once
}

func newPgxLedgerRepository(ctx context.Context, pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		broker:         events.NewBroker(events.DefaultBufferSize),
		listenCtx:      ctx,
	}
}

var (
	_ portsrepo.LedgerRepositoryFacade    = (*PgxLedgerRepository)(nil)
	_ portsrepo.ReportingRepositoryFacade = (*PgxLedgerRepository)(nil)
)

func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m, passengers := mapping.ToModelLedgerEntry(entry)
	query := `INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err = tx.Exec(ctx, query,
		m.EntryID,
		m.PNR,
		m.Kind,
		m.Source,
		m.Beneficiary,
		m.CurrencyCode,
		m.SourceCurrency,
		m.BeneficiaryCurrency,
		m.SourceAmount,
		m.BeneficiaryAmount,
		m.PurchasePrice,
		m.SalePrice,
		m.IssueDate,
		m.EntryDate,
		m.Notes,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "failed to insert ledger entry "+m.EntryID)
	}
	if err := insertPassengers(ctx, tx, passengers); err != nil {
		return err
	}
	if err := notify(ctx, tx, domain.NewLedgerEvent(domain.EventEntryCreated, entry, entry.CreatedAt)); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxLedgerRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m, passengers := mapping.ToModelLedgerEntry(entry)
	query := `
		UPDATE ledger_entries
		SET pnr = $2, source = $3, beneficiary = $4, currency_code = $5, source_currency = $6,
		    beneficiary_currency = $7, source_amount = $8, beneficiary_amount = $9, purchase_price = $10,
		    sale_price = $11, issue_date = $12, entry_date = $13, notes = $14,
		    last_updated_at = $15, last_updated_by = $16
		WHERE entry_id = $1 AND status = 'PERSISTED'`
	tag, err := tx.Exec(ctx, query,
		m.EntryID,
		m.PNR,
		m.Source,
		m.Beneficiary,
		m.CurrencyCode,
		m.SourceCurrency,
		m.BeneficiaryCurrency,
		m.SourceAmount,
		m.BeneficiaryAmount,
		m.PurchasePrice,
		m.SalePrice,
		m.IssueDate,
		m.EntryDate,
		m.Notes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "failed to update ledger entry "+m.EntryID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry %s: %w", m.EntryID, apperrors.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_passengers WHERE entry_id = $1`, m.EntryID); err != nil {
		return translateError(err, "failed to replace passengers of "+m.EntryID)
	}
	if err := insertPassengers(ctx, tx, passengers); err != nil {
		return err
	}
	if err := notify(ctx, tx, domain.NewLedgerEvent(domain.EventEntryUpdated, entry, entry.LastUpdatedAt)); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// MarkEntryRemoved flips a persisted entry to REMOVED. Missing or already
// removed entries report ErrNotFound.
func (r *PgxLedgerRepository) MarkEntryRemoved(ctx context.Context, entryID string, removedAt time.Time, removedBy string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var entry domain.LedgerEntry
	var kind string
	err = tx.QueryRow(ctx, `
		UPDATE ledger_entries
		SET status = 'REMOVED', last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND status = 'PERSISTED'
		RETURNING entry_id, kind, pnr, source, beneficiary, entry_date`,
		entryID, removedAt, removedBy,
	).Scan(&entry.ID, &kind, &entry.PNR, &entry.Source, &entry.Beneficiary, &entry.EntryDate)
	if err != nil {
		return translateError(err, "failed to remove ledger entry "+entryID)
	}
	entry.Kind = domain.EntryKind(kind)

	if err := notify(ctx, tx, domain.NewLedgerEvent(domain.EventEntryRemoved, entry, removedAt)); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func insertPassengers(ctx context.Context, tx pgx.Tx, passengers []models.Passenger) error {
	if len(passengers) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `INSERT INTO ledger_passengers (` + passengerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, p := range passengers {
		batch.Queue(query,
			p.PassengerID,
			p.EntryID,
			p.Position,
			p.Name,
			p.PassportNumber,
			p.PassengerType,
			p.PurchasePrice,
			p.SalePrice,
			p.TicketNumber,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return translateError(err, "failed to insert passengers")
	}
	return nil
}

func notify(ctx context.Context, tx pgx.Tx, ev domain.LedgerEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal ledger event: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, LedgerChannel, string(payload)); err != nil {
		return translateError(err, "failed to publish ledger event")
	}
	return nil
}

func scanEntry(row pgx.Row) (models.LedgerEntry, error) {
	var m models.LedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.PNR,
		&m.Kind,
		&m.Source,
		&m.Beneficiary,
		&m.CurrencyCode,
		&m.SourceCurrency,
		&m.BeneficiaryCurrency,
		&m.SourceAmount,
		&m.BeneficiaryAmount,
		&m.PurchasePrice,
		&m.SalePrice,
		&m.IssueDate,
		&m.EntryDate,
		&m.Notes,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	m, err := scanEntry(r.Pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE entry_id = $1`, entryID))
	if err != nil {
		return nil, translateError(err, "failed to find ledger entry")
	}
	entries, err := r.withPassengers(ctx, []models.LedgerEntry{m})
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// ListEntries returns one page in (entry_date, created_at, entry_id) descending
// order and a token for the next page when there is one.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	conds, args := filterClauses(filter)
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.Validationf("invalid nextToken")
		}
		args = append(args, cursor.EntryDate, cursor.CreatedAt, cursor.ID)
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(entry_date, created_at, entry_id COLLATE "C") < ($%d, $%d, $%d)`, n-2, n-1, n))
	}
	args = append(args, fetchLimit)

	query := `SELECT ` + entryColumns + ` FROM ledger_entries` + where(conds) +
		` ORDER BY entry_date DESC, created_at DESC, entry_id COLLATE "C" DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, translateError(err, "failed to query ledger entries")
	}
	ms, err := collectEntries(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[len(ms)-1]
		token := pagination.EncodeToken(pagination.Cursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, ID: last.EntryID})
		nextToken = &token
	}

	entries, err := r.withPassengers(ctx, ms)
	if err != nil {
		return nil, nil, err
	}
	return entries, nextToken, nil
}

// FindEntriesByEntryDate returns persisted entries with from <= entry_date < to.
func (r *PgxLedgerRepository) FindEntriesByEntryDate(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE status = 'PERSISTED' AND entry_date >= $1 AND entry_date < $2
		ORDER BY entry_date, created_at`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, translateError(err, "failed to query ledger entries for report")
	}
	ms, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}
	return r.withPassengers(ctx, ms)
}

// SubscribeEntries registers a subscriber. The shared LISTEN connection is
// opened on the first subscription and lives as long as the repository context.
func (r *PgxLedgerRepository) SubscribeEntries(ctx context.Context, filter domain.LedgerFilter) (<-chan domain.LedgerEvent, error) {
	r.listenStart.Do(func() {
		go r.listen(r.listenCtx)
	})
	return r.broker.Subscribe(ctx, filter), nil
}

func (r *PgxLedgerRepository) listen(ctx context.Context) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("component", "ledger_listener"))
	ctx = middleware.WithLogger(ctx, logger)
	defer r.broker.Close()
	for {
		err := r.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		logger.WarnContext(ctx, "Ledger listener disconnected, retrying", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(listenerRetryDelay):
		}
	}
}

func (r *PgxLedgerRepository) listenOnce(ctx context.Context) error {
	conn, err := r.Pool.Acquire(ctx)
	if err != nil {
		return translateError(err, "failed to acquire listener connection")
	}
	// A connection that was listening is not handed back to the pool.
	pgConn := conn.Hijack()
	defer pgConn.Close(context.Background())

	if _, err := pgConn.Exec(ctx, "LISTEN "+LedgerChannel); err != nil {
		return translateError(err, "failed to listen")
	}
	for {
		n, err := pgConn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var ev domain.LedgerEvent
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			middleware.GetLoggerFromCtx(ctx).WarnContext(ctx, "Discarding malformed ledger event", slog.String("error", err.Error()))
			continue
		}
		r.broker.Publish(ctx, ev)
	}
}

func collectEntries(rows pgx.Rows) ([]models.LedgerEntry, error) {
	defer rows.Close()
	ms := []models.LedgerEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan ledger entry")
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate ledger entries")
	}
	return ms, nil
}

// withPassengers loads the passengers of ms in one query and maps to domain entries.
func (r *PgxLedgerRepository) withPassengers(ctx context.Context, ms []models.LedgerEntry) ([]domain.LedgerEntry, error) {
	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		if m.Kind == string(domain.KindSale) {
			ids = append(ids, m.EntryID)
		}
	}

	byEntry := make(map[string][]models.Passenger, len(ids))
	if len(ids) > 0 {
		rows, err := r.Pool.Query(ctx,
			`SELECT `+passengerColumns+` FROM ledger_passengers WHERE entry_id = ANY($1) ORDER BY entry_id, position`, ids)
		if err != nil {
			return nil, translateError(err, "failed to query passengers")
		}
		defer rows.Close()
		for rows.Next() {
			var p models.Passenger
			if err := rows.Scan(
				&p.PassengerID,
				&p.EntryID,
				&p.Position,
				&p.Name,
				&p.PassportNumber,
				&p.PassengerType,
				&p.PurchasePrice,
				&p.SalePrice,
				&p.TicketNumber,
			); err != nil {
				return nil, translateError(err, "failed to scan passenger")
			}
			byEntry[p.EntryID] = append(byEntry[p.EntryID], p)
		}
		if err := rows.Err(); err != nil {
			return nil, translateError(err, "failed to iterate passengers")
		}
	}

	entries := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		entries[i] = mapping.ToDomainLedgerEntry(m, byEntry[m.EntryID])
	}
	return entries, nil
}

func filterClauses(f domain.LedgerFilter) ([]string, []any) {
	var conds []string
	var args []any
	add := func(format string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}
	if !f.IncludeRemoved {
		conds = append(conds, `status = 'PERSISTED'`)
	}
	if f.Kind != "" {
		add(`kind = $%d`, string(f.Kind))
	}
	if f.PNR != "" {
		add(`pnr = $%d`, domain.NormalizePNR(f.PNR))
	}
	if f.Source != "" {
		add(`lower(source) = lower($%d)`, strings.TrimSpace(f.Source))
	}
	if f.Beneficiary != "" {
		add(`lower(beneficiary) = lower($%d)`, strings.TrimSpace(f.Beneficiary))
	}
	if f.From != nil {
		add(`entry_date >= $%d`, *f.From)
	}
	if f.To != nil {
		add(`entry_date < $%d`, *f.To)
	}
	return conds, args
}

func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
