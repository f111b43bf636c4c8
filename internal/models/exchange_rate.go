package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a row of exchange_rates. Rows are never updated.
type ExchangeRate struct {
	RateID        string          `db:"rate_id"`
	BaseCurrency  string          `db:"base_currency"`
	QuoteCurrency string          `db:"quote_currency"`
	Rate          decimal.Decimal `db:"rate"`
	RecordedAt    time.Time       `db:"recorded_at"`
	RecordedBy    string          `db:"recorded_by"`
}
