package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyTotals aggregates entries booked in one currency.
type CurrencyTotals struct {
	Currency      Currency        `json:"currency"`
	EntryCount    int             `json:"entryCount"`
	TotalPurchase decimal.Decimal `json:"totalPurchase"`
	TotalSale     decimal.Decimal `json:"totalSale"`
	Profit        decimal.Decimal `json:"profit"`
}

// ProfitSummary is the per-currency profit report for a period.
// Change entries with a currency mismatch are counted but never summed.
type ProfitSummary struct {
	From               time.Time        `json:"from"`
	To                 time.Time        `json:"to"`
	Totals             []CurrencyTotals `json:"totals"`
	MismatchedChanges  int              `json:"mismatchedChanges"`
	MismatchedEntryIDs []string         `json:"mismatchedEntryIds"`
}

// Summarize builds a ProfitSummary from entries. Removed entries are skipped.
func Summarize(from, to time.Time, entries []LedgerEntry) ProfitSummary {
	summary := ProfitSummary{From: from, To: to, Totals: []CurrencyTotals{}, MismatchedEntryIDs: []string{}}
	byCurrency := make(map[Currency]*CurrencyTotals)
	order := []Currency{CurrencyIQD, CurrencyUSD}

	for _, e := range entries {
		if e.Status == StatusRemoved {
			continue
		}
		profit := e.Profit()
		amount, ok := profit.Amount()
		if !ok {
			summary.MismatchedChanges++
			summary.MismatchedEntryIDs = append(summary.MismatchedEntryIDs, e.ID)
			continue
		}
		cur := profit.Currency()
		t, exists := byCurrency[cur]
		if !exists {
			t = &CurrencyTotals{Currency: cur, TotalPurchase: decimal.Zero, TotalSale: decimal.Zero, Profit: decimal.Zero}
			byCurrency[cur] = t
		}
		t.EntryCount++
		t.TotalPurchase = t.TotalPurchase.Add(e.TotalPurchase())
		t.TotalSale = t.TotalSale.Add(e.TotalSale())
		t.Profit = t.Profit.Add(amount)
	}

	for _, cur := range order {
		if t, ok := byCurrency[cur]; ok {
			summary.Totals = append(summary.Totals, *t)
		}
	}
	return summary
}
