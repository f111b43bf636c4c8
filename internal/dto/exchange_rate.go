package dto

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/shopspring/decimal"
)

// RecordExchangeRateRequest appends a USD->IQD rate to the history.
type RecordExchangeRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

// ListExchangeRatesParams defines query parameters for the rate history.
type ListExchangeRatesParams struct {
	Limit int `form:"limit" binding:"min=0"`
}

// ExchangeRateResponse defines the structure for API responses containing exchange rate details.
type ExchangeRateResponse struct {
	ID          string          `json:"id"`
	Base        string          `json:"base"`
	Quote       string          `json:"quote"`
	Rate        decimal.Decimal `json:"rate"`
	RateDisplay string          `json:"rateDisplay"`
	RecordedAt  time.Time       `json:"recordedAt"`
	RecordedBy  string          `json:"recordedBy"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ID:          rate.ID,
		Base:        string(domain.RateBaseCurrency),
		Quote:       string(domain.RateQuoteCurrency),
		Rate:        rate.Rate,
		RateDisplay: utils.FormatMoney(rate.Rate, ""),
		RecordedAt:  rate.RecordedAt,
		RecordedBy:  rate.RecordedBy,
	}
}

// ToListExchangeRateResponse converts a slice of domain.ExchangeRate to a slice of ExchangeRateResponse DTOs.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = ToExchangeRateResponse(&rates[i])
	}
	return responses
}
