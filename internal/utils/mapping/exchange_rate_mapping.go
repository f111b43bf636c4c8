package mapping

import (
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/models"
)

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		RateID:        d.ID,
		BaseCurrency:  string(domain.RateBaseCurrency),
		QuoteCurrency: string(domain.RateQuoteCurrency),
		Rate:          d.Rate,
		RecordedAt:    d.RecordedAt,
		RecordedBy:    d.RecordedBy,
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		ID:         m.RateID,
		Rate:       m.Rate,
		RecordedAt: m.RecordedAt.UTC(),
		RecordedBy: m.RecordedBy,
	}
}
