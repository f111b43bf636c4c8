package dto

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/shopspring/decimal"
)

// ProfitReportParams defines the period of a profit report. Both days are inclusive.
type ProfitReportParams struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}

// CurrencyTotalsResponse is one currency line of the report.
type CurrencyTotalsResponse struct {
	Currency      string          `json:"currency"`
	EntryCount    int             `json:"entryCount"`
	TotalPurchase decimal.Decimal `json:"totalPurchase"`
	TotalSale     decimal.Decimal `json:"totalSale"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitDisplay string          `json:"profitDisplay"`
}

// ProfitSummaryResponse defines the data returned for a profit report.
type ProfitSummaryResponse struct {
	From               time.Time                `json:"from"`
	To                 time.Time                `json:"to"`
	Totals             []CurrencyTotalsResponse `json:"totals"`
	MismatchedChanges  int                      `json:"mismatchedChanges"`
	MismatchedEntryIDs []string                 `json:"mismatchedEntryIds"`
}

// ToProfitSummaryResponse converts a domain.ProfitSummary to its response DTO.
func ToProfitSummaryResponse(s *domain.ProfitSummary) ProfitSummaryResponse {
	totals := make([]CurrencyTotalsResponse, len(s.Totals))
	for i, t := range s.Totals {
		totals[i] = CurrencyTotalsResponse{
			Currency:      string(t.Currency),
			EntryCount:    t.EntryCount,
			TotalPurchase: t.TotalPurchase,
			TotalSale:     t.TotalSale,
			Profit:        t.Profit,
			ProfitDisplay: utils.FormatMoney(t.Profit, string(t.Currency)),
		}
	}
	return ProfitSummaryResponse{
		From:               s.From,
		To:                 s.To,
		Totals:             totals,
		MismatchedChanges:  s.MismatchedChanges,
		MismatchedEntryIDs: s.MismatchedEntryIDs,
	}
}
