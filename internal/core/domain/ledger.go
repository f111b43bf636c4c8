package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Stored precision of monetary amounts: NUMERIC(20, 4).
const (
	MoneyScale         int32 = 4
	moneyIntegerDigits int32 = 16
)

var maxMoney = decimal.New(1, moneyIntegerDigits)

// checkMoneyPrecision rejects amounts the store would round or overflow.
// Trailing zeros beyond the scale are fine.
func checkMoneyPrecision(d decimal.Decimal, label string, args ...any) error {
	name := fmt.Sprintf(label, args...)
	if !d.Equal(d.Truncate(MoneyScale)) {
		return apperrors.Validationf("%s must have at most %d decimal places", name, MoneyScale)
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return apperrors.Validationf("%s is too large", name)
	}
	return nil
}

// EntryKind distinguishes the three ticket records kept by the agency.
type EntryKind string

const (
	KindSale   EntryKind = "sale"
	KindChange EntryKind = "change"
	KindRefund EntryKind = "refund"
)

// IsValid reports whether k is a known kind.
func (k EntryKind) IsValid() bool {
	switch k {
	case KindSale, KindChange, KindRefund:
		return true
	}
	return false
}

// Currency is one of the two currencies the agency books in.
type Currency string

const (
	CurrencyIQD Currency = "IQD"
	CurrencyUSD Currency = "USD"
)

// IsValid reports whether c is a supported currency.
func (c Currency) IsValid() bool {
	return c == CurrencyIQD || c == CurrencyUSD
}

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(c Currency) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(string(c))))
}

// EntryStatus is the persisted lifecycle state. Drafts never reach the store.
type EntryStatus string

const (
	StatusPersisted EntryStatus = "PERSISTED"
	StatusRemoved   EntryStatus = "REMOVED" // terminal
)

// PassengerType classifies a passenger line.
type PassengerType string

const (
	PassengerAdult  PassengerType = "adult"
	PassengerChild  PassengerType = "child"
	PassengerInfant PassengerType = "infant"
)

// IsValid reports whether t is a known passenger type.
func (t PassengerType) IsValid() bool {
	switch t {
	case PassengerAdult, PassengerChild, PassengerInfant:
		return true
	}
	return false
}

// PassengerLine is one ticket of a sale, priced in the entry currency.
type PassengerLine struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	PassportNumber string          `json:"passportNumber"`
	PassengerType  PassengerType   `json:"passengerType"`
	PurchasePrice  decimal.Decimal `json:"purchasePrice"`
	SalePrice      decimal.Decimal `json:"salePrice"`
	TicketNumber   string          `json:"ticketNumber"`
}

// Profit is SalePrice - PurchasePrice for the line.
func (l PassengerLine) Profit() decimal.Decimal {
	return l.SalePrice.Sub(l.PurchasePrice)
}

// LedgerEntry is a sale, change or refund record tying a source (supplier) to a
// beneficiary (client company).
//
// Sale entries carry Currency and Passengers. Change entries carry the two legs
// SourceAmount/SourceCurrency and BeneficiaryAmount/BeneficiaryCurrency, with
// IssueDate holding the change date. Refund entries carry Currency with
// PurchasePrice and SalePrice.
type LedgerEntry struct {
	ID                  string          `json:"id"`
	PNR                 string          `json:"pnr"`
	Kind                EntryKind       `json:"kind"`
	Source              string          `json:"source"`
	Beneficiary         string          `json:"beneficiary"`
	Currency            Currency        `json:"currency,omitempty"`
	SourceCurrency      Currency        `json:"sourceCurrency,omitempty"`
	BeneficiaryCurrency Currency        `json:"beneficiaryCurrency,omitempty"`
	SourceAmount        decimal.Decimal `json:"sourceAmount"`
	BeneficiaryAmount   decimal.Decimal `json:"beneficiaryAmount"`
	PurchasePrice       decimal.Decimal `json:"purchasePrice"`
	SalePrice           decimal.Decimal `json:"salePrice"`
	IssueDate           time.Time       `json:"issueDate"`
	EntryDate           time.Time       `json:"entryDate"`
	Passengers          []PassengerLine `json:"passengers"`
	Notes               string          `json:"notes"`
	Status              EntryStatus     `json:"status"`
	AuditFields
}

// NormalizePNR trims and upper-cases a booking reference.
func NormalizePNR(pnr string) string {
	return strings.ToUpper(strings.TrimSpace(pnr))
}

// Normalize canonicalizes free-text and code fields in place.
func (e *LedgerEntry) Normalize() {
	e.PNR = NormalizePNR(e.PNR)
	e.Source = strings.TrimSpace(e.Source)
	e.Beneficiary = strings.TrimSpace(e.Beneficiary)
	e.Currency = NormalizeCurrency(e.Currency)
	e.SourceCurrency = NormalizeCurrency(e.SourceCurrency)
	e.BeneficiaryCurrency = NormalizeCurrency(e.BeneficiaryCurrency)
	for i := range e.Passengers {
		p := &e.Passengers[i]
		p.Name = strings.TrimSpace(p.Name)
		p.PassportNumber = strings.ToUpper(strings.TrimSpace(p.PassportNumber))
		p.TicketNumber = strings.TrimSpace(p.TicketNumber)
		p.PassengerType = PassengerType(strings.ToLower(strings.TrimSpace(string(p.PassengerType))))
		if p.PassengerType == "" {
			p.PassengerType = PassengerAdult
		}
	}
}

// Clone returns a deep copy so that merges never alias the stored record.
func (e LedgerEntry) Clone() LedgerEntry {
	if e.Passengers != nil {
		e.Passengers = append([]PassengerLine(nil), e.Passengers...)
	}
	return e
}

// Validate checks every invariant of the full record. It is run on the merged
// candidate before any write.
func (e LedgerEntry) Validate() error {
	if e.PNR == "" {
		return apperrors.Validationf("missing pnr")
	}
	if e.Source == "" {
		return apperrors.Validationf("missing source")
	}
	if e.Beneficiary == "" {
		return apperrors.Validationf("missing beneficiary")
	}
	if e.EntryDate.IsZero() {
		return apperrors.Validationf("missing entry date")
	}

	switch e.Kind {
	case KindSale:
		return e.validateSale()
	case KindChange:
		return e.validateChange()
	case KindRefund:
		return e.validateRefund()
	default:
		return apperrors.Validationf("unknown entry kind %q", e.Kind)
	}
}

func (e LedgerEntry) validateSale() error {
	if !e.Currency.IsValid() {
		return apperrors.Validationf("unsupported currency %q", e.Currency)
	}
	if len(e.Passengers) == 0 {
		return apperrors.Validationf("at least one passenger is required")
	}
	for i, p := range e.Passengers {
		if p.Name == "" {
			return apperrors.Validationf("passenger %d: missing name", i+1)
		}
		if !p.PassengerType.IsValid() {
			return apperrors.Validationf("passenger %d: unknown passenger type %q", i+1, p.PassengerType)
		}
		if p.PurchasePrice.IsNegative() {
			return apperrors.Validationf("passenger %d: purchase price must not be negative", i+1)
		}
		if p.SalePrice.IsNegative() {
			return apperrors.Validationf("passenger %d: sale price must not be negative", i+1)
		}
		if err := checkMoneyPrecision(p.PurchasePrice, "passenger %d: purchase price", i+1); err != nil {
			return err
		}
		if err := checkMoneyPrecision(p.SalePrice, "passenger %d: sale price", i+1); err != nil {
			return err
		}
	}
	return nil
}

func (e LedgerEntry) validateChange() error {
	if !e.SourceCurrency.IsValid() {
		return apperrors.Validationf("unsupported source currency %q", e.SourceCurrency)
	}
	if !e.BeneficiaryCurrency.IsValid() {
		return apperrors.Validationf("unsupported beneficiary currency %q", e.BeneficiaryCurrency)
	}
	if e.SourceAmount.IsNegative() {
		return apperrors.Validationf("source amount must not be negative")
	}
	if e.BeneficiaryAmount.IsNegative() {
		return apperrors.Validationf("beneficiary amount must not be negative")
	}
	if err := checkMoneyPrecision(e.SourceAmount, "source amount"); err != nil {
		return err
	}
	if err := checkMoneyPrecision(e.BeneficiaryAmount, "beneficiary amount"); err != nil {
		return err
	}
	if e.IssueDate.IsZero() {
		return apperrors.Validationf("missing change date")
	}
	return nil
}

func (e LedgerEntry) validateRefund() error {
	if !e.Currency.IsValid() {
		return apperrors.Validationf("unsupported currency %q", e.Currency)
	}
	if e.PurchasePrice.IsNegative() {
		return apperrors.Validationf("purchase price must not be negative")
	}
	if e.SalePrice.IsNegative() {
		return apperrors.Validationf("sale price must not be negative")
	}
	if err := checkMoneyPrecision(e.PurchasePrice, "purchase price"); err != nil {
		return err
	}
	if err := checkMoneyPrecision(e.SalePrice, "sale price"); err != nil {
		return err
	}
	if e.IssueDate.IsZero() {
		return apperrors.Validationf("missing issue date")
	}
	return nil
}

// CurrencyMismatch reports a change record whose legs use different currencies.
func (e LedgerEntry) CurrencyMismatch() bool {
	return e.Kind == KindChange && e.SourceCurrency != e.BeneficiaryCurrency
}

// TotalPurchase is the source-side cost of the entry in its source currency.
func (e LedgerEntry) TotalPurchase() decimal.Decimal {
	switch e.Kind {
	case KindSale:
		total := decimal.Zero
		for _, p := range e.Passengers {
			total = total.Add(p.PurchasePrice)
		}
		return total
	case KindChange:
		return e.SourceAmount
	default:
		return e.PurchasePrice
	}
}

// TotalSale is the beneficiary-side price of the entry in its beneficiary currency.
func (e LedgerEntry) TotalSale() decimal.Decimal {
	switch e.Kind {
	case KindSale:
		total := decimal.Zero
		for _, p := range e.Passengers {
			total = total.Add(p.SalePrice)
		}
		return total
	case KindChange:
		return e.BeneficiaryAmount
	default:
		return e.SalePrice
	}
}

// Profit returns the derived profit/loss. Change entries whose legs differ in
// currency yield a mismatch instead of a number.
func (e LedgerEntry) Profit() Profit {
	if e.Kind == KindChange {
		if e.CurrencyMismatch() {
			return MismatchedProfit()
		}
		return ProfitOf(e.BeneficiaryAmount.Sub(e.SourceAmount), e.SourceCurrency)
	}
	return ProfitOf(e.TotalSale().Sub(e.TotalPurchase()), e.Currency)
}
