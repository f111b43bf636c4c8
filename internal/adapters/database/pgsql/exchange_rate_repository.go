package pgsql

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/travel_backoffice/internal/models"
	"github.com/SscSPs/travel_backoffice/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const rateColumns = `rate_id, base_currency, quote_currency, rate, recorded_at, recorded_by`

// PgxExchangeRateRepository keeps the append-only rate history.
type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(pool *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

func scanRate(row pgx.Row) (domain.ExchangeRate, error) {
	var m models.ExchangeRate
	if err := row.Scan(&m.RateID, &m.BaseCurrency, &m.QuoteCurrency, &m.Rate, &m.RecordedAt, &m.RecordedBy); err != nil {
		return domain.ExchangeRate{}, err
	}
	return mapping.ToDomainExchangeRate(m), nil
}

func (r *PgxExchangeRateRepository) AppendRate(ctx context.Context, rate domain.ExchangeRate) error {
	m := mapping.ToModelExchangeRate(rate)
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO exchange_rates (`+rateColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		m.RateID, m.BaseCurrency, m.QuoteCurrency, m.Rate, m.RecordedAt, m.RecordedBy,
	)
	if err != nil {
		return translateError(err, "failed to append exchange rate")
	}
	return nil
}

func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context) (*domain.ExchangeRate, error) {
	rate, err := scanRate(r.Pool.QueryRow(ctx,
		`SELECT `+rateColumns+` FROM exchange_rates ORDER BY recorded_at DESC, rate_id DESC LIMIT 1`))
	if err != nil {
		return nil, translateError(err, "failed to find latest exchange rate")
	}
	return &rate, nil
}

func (r *PgxExchangeRateRepository) ListRecentRates(ctx context.Context, limit int) ([]domain.ExchangeRate, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+rateColumns+` FROM exchange_rates ORDER BY recorded_at DESC, rate_id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, translateError(err, "failed to list exchange rates")
	}
	defer rows.Close()

	rates := []domain.ExchangeRate{}
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan exchange rate")
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate exchange rates")
	}
	return rates, nil
}
