package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sale() domain.LedgerEntry {
	return domain.LedgerEntry{
		ID: "e1", PNR: "AB12CD", Kind: domain.KindSale,
		Source: "Fly Baghdad", Beneficiary: "Acme", Currency: domain.CurrencyIQD,
		EntryDate: fixedTime, IssueDate: fixedTime,
		Passengers: []domain.PassengerLine{
			{ID: "l1", Name: "Ali", PassengerType: domain.PassengerAdult, PurchasePrice: d("0.1"), SalePrice: d("0.3")},
			{ID: "l2", Name: "Sara", PassengerType: domain.PassengerChild, PurchasePrice: d("0.2"), SalePrice: d("0.1")},
		},
		Status: domain.StatusPersisted,
	}
}

func change(src, ben domain.Currency) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID: "e2", PNR: "XY", Kind: domain.KindChange, Source: "S", Beneficiary: "B",
		SourceCurrency: src, SourceAmount: d("100"),
		BeneficiaryCurrency: ben, BeneficiaryAmount: d("150"),
		EntryDate: fixedTime, IssueDate: fixedTime, Status: domain.StatusPersisted,
	}
}

func TestLedgerEntry_ProfitIsExactDecimal(t *testing.T) {
	e := sale()
	assert.True(t, d("0.3").Equal(e.TotalPurchase()))
	assert.True(t, d("0.4").Equal(e.TotalSale()))
	amount, ok := e.Profit().Amount()
	require.True(t, ok)
	assert.Equal(t, "0.1", amount.String())
	assert.True(t, d("-0.1").Equal(e.Passengers[1].Profit()))
}

func TestLedgerEntry_ChangeProfit(t *testing.T) {
	same := change(domain.CurrencyUSD, domain.CurrencyUSD)
	amount, ok := same.Profit().Amount()
	require.True(t, ok)
	assert.True(t, d("50").Equal(amount))
	assert.Equal(t, domain.CurrencyUSD, same.Profit().Currency())

	mixed := change(domain.CurrencyUSD, domain.CurrencyIQD)
	assert.True(t, mixed.CurrencyMismatch())
	p := mixed.Profit()
	assert.True(t, p.IsMismatch())
	assert.False(t, p.IsLoss())
	amount, ok = p.Amount()
	assert.False(t, ok)
	assert.True(t, amount.IsZero())
}

func TestLedgerEntry_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.LedgerEntry)
		reason string
	}{
		{"missing pnr", func(e *domain.LedgerEntry) { e.PNR = "" }, "missing pnr"},
		{"missing source", func(e *domain.LedgerEntry) { e.Source = "" }, "missing source"},
		{"unsupported currency", func(e *domain.LedgerEntry) { e.Currency = "EUR" }, `unsupported currency "EUR"`},
		{"no passengers", func(e *domain.LedgerEntry) { e.Passengers = nil }, "at least one passenger is required"},
		{"negative price", func(e *domain.LedgerEntry) { e.Passengers[0].SalePrice = d("-1") }, "passenger 1: sale price must not be negative"},
		{"unknown kind", func(e *domain.LedgerEntry) { e.Kind = "void" }, `unknown entry kind "void"`},
		{"sub-cent price", func(e *domain.LedgerEntry) { e.Passengers[0].PurchasePrice = d("10.00005") }, "passenger 1: purchase price must have at most 4 decimal places"},
		{"oversized price", func(e *domain.LedgerEntry) { e.Passengers[1].SalePrice = d("10000000000000000") }, "passenger 2: sale price is too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := sale()
			tt.mutate(&e)
			err := e.Validate()
			require.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
	assert.NoError(t, sale().Validate())
	assert.NoError(t, change(domain.CurrencyUSD, domain.CurrencyIQD).Validate())
}

func TestLedgerEntry_ValidateStoredPrecision(t *testing.T) {
	e := sale()
	e.Passengers[0].SalePrice = d("12.3400000")
	assert.NoError(t, e.Validate(), "trailing zeros do not change the value")

	ch := change(domain.CurrencyUSD, domain.CurrencyUSD)
	ch.BeneficiaryAmount = d("150.12345")
	err := ch.Validate()
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "beneficiary amount must have at most 4 decimal places")

	refund := domain.LedgerEntry{
		ID: "e3", PNR: "RF1", Kind: domain.KindRefund, Source: "S", Beneficiary: "B",
		Currency: domain.CurrencyUSD, PurchasePrice: d("80"), SalePrice: d("99.99999"),
		EntryDate: fixedTime, IssueDate: fixedTime, Status: domain.StatusPersisted,
	}
	err = refund.Validate()
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "sale price must have at most 4 decimal places")

	refund.SalePrice = d("99.9999")
	assert.NoError(t, refund.Validate())
}

func TestExchangeRate_ValidateStoredPrecision(t *testing.T) {
	assert.NoError(t, domain.ExchangeRate{Rate: d("1310.123456")}.Validate())

	err := domain.ExchangeRate{Rate: d("1310.1234567")}.Validate()
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "at most 6 decimal places")

	err = domain.ExchangeRate{Rate: d("100000000000000")}.Validate()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLedgerEntry_NormalizeAndClone(t *testing.T) {
	e := sale()
	e.PNR = " ab12cd "
	e.Currency = " iqd"
	e.Passengers[0].PassengerType = ""
	e.Passengers[0].PassportNumber = " a123 "
	e.Normalize()
	assert.Equal(t, "AB12CD", e.PNR)
	assert.Equal(t, domain.CurrencyIQD, e.Currency)
	assert.Equal(t, domain.PassengerAdult, e.Passengers[0].PassengerType)
	assert.Equal(t, "A123", e.Passengers[0].PassportNumber)

	c := e.Clone()
	c.Passengers[0].Name = "changed"
	assert.Equal(t, "Ali", e.Passengers[0].Name)
}

func TestProfit_JSON(t *testing.T) {
	raw, err := json.Marshal(domain.MismatchedProfit())
	require.NoError(t, err)
	assert.JSONEq(t, `{"currencyMismatch":true}`, string(raw))

	raw, err = json.Marshal(domain.ProfitOf(d("12.50"), domain.CurrencyUSD))
	require.NoError(t, err)
	assert.JSONEq(t, `{"currencyMismatch":false,"amount":"12.5","currency":"USD"}`, string(raw))

	var back domain.Profit
	require.NoError(t, json.Unmarshal([]byte(`{"currencyMismatch":true,"amount":"3"}`), &back))
	assert.True(t, back.IsMismatch())
}

func TestLedgerFilter(t *testing.T) {
	e := sale()
	assert.True(t, domain.LedgerFilter{}.Matches(e))
	assert.True(t, domain.LedgerFilter{PNR: "ab12cd", Source: "fly baghdad"}.Matches(e))
	assert.False(t, domain.LedgerFilter{Kind: domain.KindRefund}.Matches(e))

	to := fixedTime
	assert.False(t, domain.LedgerFilter{To: &to}.Matches(e), "to is exclusive")

	e.Status = domain.StatusRemoved
	assert.False(t, domain.LedgerFilter{}.Matches(e))
	assert.True(t, domain.LedgerFilter{IncludeRemoved: true}.Matches(e))
}
