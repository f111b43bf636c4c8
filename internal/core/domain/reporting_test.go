package domain_test

import (
	"testing"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	removed := sale()
	removed.ID = "gone"
	removed.Status = domain.StatusRemoved
	mixed := change(domain.CurrencyIQD, domain.CurrencyUSD)
	mixed.ID = "mixed"

	s := domain.Summarize(fixedTime, fixedTime, []domain.LedgerEntry{
		sale(),
		change(domain.CurrencyUSD, domain.CurrencyUSD),
		mixed,
		removed,
	})

	require.Len(t, s.Totals, 2)
	assert.Equal(t, domain.CurrencyIQD, s.Totals[0].Currency)
	assert.Equal(t, "0.1", s.Totals[0].Profit.String())
	assert.Equal(t, 1, s.Totals[0].EntryCount)
	assert.Equal(t, domain.CurrencyUSD, s.Totals[1].Currency)
	assert.Equal(t, "50", s.Totals[1].Profit.String())
	assert.Equal(t, 1, s.MismatchedChanges)
	assert.Equal(t, []string{"mixed"}, s.MismatchedEntryIDs)
}

func TestSummarize_Empty(t *testing.T) {
	s := domain.Summarize(fixedTime, fixedTime, nil)
	assert.Empty(t, s.Totals)
	assert.NotNil(t, s.MismatchedEntryIDs)
}
