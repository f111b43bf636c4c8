package domain

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Rates are always recorded as IQD per one USD.
const (
	RateBaseCurrency  = CurrencyUSD
	RateQuoteCurrency = CurrencyIQD
)

// ExchangeRate is one point of the append-only USD->IQD history.
// It is used for cross-currency display only; ledger math never converts.
type ExchangeRate struct {
	ID         string          `json:"id"`
	Rate       decimal.Decimal `json:"rate"`
	RecordedAt time.Time       `json:"recordedAt"`
	RecordedBy string          `json:"recordedBy"`
}

// Stored precision of rates: NUMERIC(20, 6).
const RateScale int32 = 6

var maxRate = decimal.New(1, 14)

// Validate checks the rate is strictly positive and fits the stored precision.
func (r ExchangeRate) Validate() error {
	if !r.Rate.IsPositive() {
		return apperrors.Validationf("exchange rate must be positive")
	}
	if !r.Rate.Equal(r.Rate.Truncate(RateScale)) {
		return apperrors.Validationf("exchange rate must have at most %d decimal places", RateScale)
	}
	if r.Rate.GreaterThanOrEqual(maxRate) {
		return apperrors.Validationf("exchange rate is too large")
	}
	return nil
}

// Convert converts amount between IQD and USD using the rate. Same-currency
// conversion returns amount unchanged.
func (r ExchangeRate) Convert(amount decimal.Decimal, from, to Currency) (decimal.Decimal, error) {
	if !from.IsValid() || !to.IsValid() {
		return decimal.Zero, apperrors.Validationf("unsupported currency pair %s/%s", from, to)
	}
	if from == to {
		return amount, nil
	}
	if err := r.Validate(); err != nil {
		return decimal.Zero, err
	}
	if from == RateBaseCurrency {
		return amount.Mul(r.Rate), nil
	}
	return amount.Div(r.Rate), nil
}
