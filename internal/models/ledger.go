package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus mirrors the status column of ledger_entries.
type EntryStatus string

const (
	Persisted EntryStatus = "PERSISTED"
	Removed   EntryStatus = "REMOVED"
)

// LedgerEntry is a row of ledger_entries. Columns that do not apply to the
// entry kind are NULL.
type LedgerEntry struct {
	EntryID             string           `db:"entry_id"`
	PNR                 string           `db:"pnr"`
	Kind                string           `db:"kind"`
	Source              string           `db:"source"`
	Beneficiary         string           `db:"beneficiary"`
	CurrencyCode        *string          `db:"currency_code"`
	SourceCurrency      *string          `db:"source_currency"`
	BeneficiaryCurrency *string          `db:"beneficiary_currency"`
	SourceAmount        *decimal.Decimal `db:"source_amount"`
	BeneficiaryAmount   *decimal.Decimal `db:"beneficiary_amount"`
	PurchasePrice       *decimal.Decimal `db:"purchase_price"`
	SalePrice           *decimal.Decimal `db:"sale_price"`
	IssueDate           time.Time        `db:"issue_date"`
	EntryDate           time.Time        `db:"entry_date"`
	Notes               string           `db:"notes"`
	Status              EntryStatus      `db:"status"`
	AuditFields
}

// Passenger is a row of ledger_passengers. Position keeps the input order.
type Passenger struct {
	PassengerID    string          `db:"passenger_id"`
	EntryID        string          `db:"entry_id"`
	Position       int             `db:"position"`
	Name           string          `db:"name"`
	PassportNumber string          `db:"passport_number"`
	PassengerType  string          `db:"passenger_type"`
	PurchasePrice  decimal.Decimal `db:"purchase_price"`
	SalePrice      decimal.Decimal `db:"sale_price"`
	TicketNumber   string          `db:"ticket_number"`
}
