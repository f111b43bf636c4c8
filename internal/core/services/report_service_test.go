package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfitSummary(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	authz := services.NewAuthorizationService(w.store)
	ledger := services.NewLedgerService(w.store, services.WithLedgerAuthorizer(authz), services.WithLedgerClock(fixedClock))
	reports := services.NewReportService(w.store, services.WithReportAuthorizer(authz))

	day := fixedNow
	_, err := ledger.CreateRefund(ctx, w.admin, dto.CreateRefundRequest{
		PNR: "R1", Source: "S", Beneficiary: "B", Currency: "USD",
		PurchasePrice: dec("100"), SalePrice: dec("130"), IssueDate: &day, EntryDate: &day,
	})
	require.NoError(t, err)
	_, err = ledger.CreateChange(ctx, w.admin, dto.CreateChangeRequest{
		PNR: "C1", Source: "S", Beneficiary: "B",
		SourceAmount: dec("10000"), SourceCurrency: "IQD",
		BeneficiaryAmount: dec("15000"), BeneficiaryCurrency: "IQD",
		ChangeDate: &day, EntryDate: &day,
	})
	require.NoError(t, err)
	mixed, err := ledger.CreateChange(ctx, w.admin, dto.CreateChangeRequest{
		PNR: "C2", Source: "S", Beneficiary: "B",
		SourceAmount: dec("10"), SourceCurrency: "USD",
		BeneficiaryAmount: dec("15000"), BeneficiaryCurrency: "IQD",
		ChangeDate: &day, EntryDate: &day,
	})
	require.NoError(t, err)
	removed, err := ledger.CreateRefund(ctx, w.admin, dto.CreateRefundRequest{
		PNR: "R2", Source: "S", Beneficiary: "B", Currency: "USD",
		PurchasePrice: dec("1"), SalePrice: dec("1000"), IssueDate: &day, EntryDate: &day,
	})
	require.NoError(t, err)
	require.NoError(t, ledger.Delete(ctx, w.admin, removed.ID))

	params := dto.ProfitReportParams{From: dateOnly(day), To: dateOnly(day)}
	summary, err := reports.ProfitSummary(ctx, w.manager, params)
	require.NoError(t, err)

	require.Len(t, summary.Totals, 2)
	assert.Equal(t, domain.CurrencyIQD, summary.Totals[0].Currency)
	assert.True(t, dec("5000").Equal(summary.Totals[0].Profit))
	assert.Equal(t, domain.CurrencyUSD, summary.Totals[1].Currency)
	assert.True(t, dec("30").Equal(summary.Totals[1].Profit))
	assert.Equal(t, 1, summary.Totals[1].EntryCount)
	assert.Equal(t, 1, summary.MismatchedChanges)
	assert.Equal(t, []string{mixed.ID}, summary.MismatchedEntryIDs)

	_, err = reports.ProfitSummary(ctx, w.clerk, params)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = reports.ProfitSummary(ctx, w.manager, dto.ProfitReportParams{From: dateOnly(day), To: dateOnly(day).AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
