package dto

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/shopspring/decimal"
)

// PassengerLineRequest is one passenger of a sale. ID is only used by updates
// to keep the identity of an existing line.
type PassengerLineRequest struct {
	ID             string          `json:"id"`
	Name           string          `json:"name" binding:"required"`
	PassportNumber string          `json:"passportNumber"`
	PassengerType  string          `json:"passengerType" binding:"omitempty,oneof=adult child infant"`
	PurchasePrice  decimal.Decimal `json:"purchasePrice"`
	SalePrice      decimal.Decimal `json:"salePrice"`
	TicketNumber   string          `json:"ticketNumber"`
}

// CreateSaleRequest defines the payload for recording a ticket sale.
type CreateSaleRequest struct {
	PNR         string                 `json:"pnr" binding:"required"`
	Source      string                 `json:"source" binding:"required"`
	Beneficiary string                 `json:"beneficiary" binding:"required"`
	Currency    string                 `json:"currency" binding:"required"`
	IssueDate   *time.Time             `json:"issueDate"`
	EntryDate   *time.Time             `json:"entryDate"`
	Passengers  []PassengerLineRequest `json:"passengers" binding:"required,min=1,dive"`
	Notes       string                 `json:"notes"`
}

// CreateChangeRequest defines the payload for recording a ticket change.
// The two legs may use different currencies.
type CreateChangeRequest struct {
	PNR                 string          `json:"pnr" binding:"required"`
	Source              string          `json:"source" binding:"required"`
	Beneficiary         string          `json:"beneficiary" binding:"required"`
	SourceAmount        decimal.Decimal `json:"sourceAmount"`
	BeneficiaryAmount   decimal.Decimal `json:"beneficiaryAmount"`
	SourceCurrency      string          `json:"sourceCurrency" binding:"required"`
	BeneficiaryCurrency string          `json:"beneficiaryCurrency" binding:"required"`
	ChangeDate          *time.Time      `json:"changeDate"`
	EntryDate           *time.Time      `json:"entryDate"`
	Notes               string          `json:"notes"`
}

// CreateRefundRequest defines the payload for recording a refund.
type CreateRefundRequest struct {
	PNR           string          `json:"pnr" binding:"required"`
	Source        string          `json:"source" binding:"required"`
	Beneficiary   string          `json:"beneficiary" binding:"required"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	Currency      string          `json:"currency" binding:"required"`
	IssueDate     *time.Time      `json:"issueDate"`
	EntryDate     *time.Time      `json:"entryDate"`
	Notes         string          `json:"notes"`
}

// UpdateLedgerEntryRequest is a partial patch. Nil fields keep their persisted value.
// The kind of an entry cannot change.
type UpdateLedgerEntryRequest struct {
	PNR                 *string                 `json:"pnr"`
	Source              *string                 `json:"source"`
	Beneficiary         *string                 `json:"beneficiary"`
	Currency            *string                 `json:"currency"`
	SourceCurrency      *string                 `json:"sourceCurrency"`
	BeneficiaryCurrency *string                 `json:"beneficiaryCurrency"`
	SourceAmount        *decimal.Decimal        `json:"sourceAmount"`
	BeneficiaryAmount   *decimal.Decimal        `json:"beneficiaryAmount"`
	PurchasePrice       *decimal.Decimal        `json:"purchasePrice"`
	SalePrice           *decimal.Decimal        `json:"salePrice"`
	IssueDate           *time.Time              `json:"issueDate"`
	EntryDate           *time.Time              `json:"entryDate"`
	Passengers          *[]PassengerLineRequest `json:"passengers" binding:"omitempty,dive"`
	Notes               *string                 `json:"notes"`
}

// ListLedgerEntriesParams defines query parameters for listing and streaming entries.
type ListLedgerEntriesParams struct {
	Kind        string    `form:"kind" binding:"omitempty,oneof=sale change refund"`
	PNR         string    `form:"pnr"`
	Source      string    `form:"source"`
	Beneficiary string    `form:"beneficiary"`
	From        time.Time `form:"from" time_format:"2006-01-02"`
	To          time.Time `form:"to" time_format:"2006-01-02"`
	Limit       int       `form:"limit,default=20" binding:"min=0,max=200"`
	NextToken   *string   `form:"nextToken"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListLedgerEntriesParams) ToFilter() domain.LedgerFilter {
	f := domain.LedgerFilter{
		Kind:        domain.EntryKind(p.Kind),
		PNR:         p.PNR,
		Source:      p.Source,
		Beneficiary: p.Beneficiary,
		Limit:       p.Limit,
		NextToken:   p.NextToken,
	}
	if !p.From.IsZero() {
		from := p.From
		f.From = &from
	}
	if !p.To.IsZero() {
		// "to" is a calendar day; include all of it
		to := p.To.AddDate(0, 0, 1)
		f.To = &to
	}
	return f
}

// PassengerLineResponse is a passenger line with its derived profit.
type PassengerLineResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	PassportNumber string          `json:"passportNumber"`
	PassengerType  string          `json:"passengerType"`
	PurchasePrice  decimal.Decimal `json:"purchasePrice"`
	SalePrice      decimal.Decimal `json:"salePrice"`
	Profit         decimal.Decimal `json:"profit"`
	TicketNumber   string          `json:"ticketNumber"`
}

// LedgerEntryResponse defines the data returned for a ledger entry.
// Profit is either {"currencyMismatch":true} or an exact amount with its currency;
// ProfitDisplay is the 2-place rendering and is omitted on a mismatch.
type LedgerEntryResponse struct {
	ID                  string                  `json:"id"`
	PNR                 string                  `json:"pnr"`
	Kind                string                  `json:"kind"`
	Source              string                  `json:"source"`
	Beneficiary         string                  `json:"beneficiary"`
	Currency            string                  `json:"currency,omitempty"`
	SourceCurrency      string                  `json:"sourceCurrency,omitempty"`
	BeneficiaryCurrency string                  `json:"beneficiaryCurrency,omitempty"`
	SourceAmount        *decimal.Decimal        `json:"sourceAmount,omitempty"`
	BeneficiaryAmount   *decimal.Decimal        `json:"beneficiaryAmount,omitempty"`
	PurchasePrice       *decimal.Decimal        `json:"purchasePrice,omitempty"`
	SalePrice           *decimal.Decimal        `json:"salePrice,omitempty"`
	TotalPurchase       decimal.Decimal         `json:"totalPurchase"`
	TotalSale           decimal.Decimal         `json:"totalSale"`
	Profit              domain.Profit           `json:"profit"`
	CurrencyMismatch    bool                    `json:"currencyMismatch"`
	ProfitDisplay       *string                 `json:"profitDisplay,omitempty"`
	IssueDate           time.Time               `json:"issueDate"`
	EntryDate           time.Time               `json:"entryDate"`
	Passengers          []PassengerLineResponse `json:"passengers,omitempty"`
	Notes               string                  `json:"notes"`
	Status              string                  `json:"status"`
	CreatedAt           time.Time               `json:"createdAt"`
	CreatedBy           string                  `json:"createdBy"`
	LastUpdatedAt       time.Time               `json:"lastUpdatedAt"`
	LastUpdatedBy       string                  `json:"lastUpdatedBy"`
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to its response DTO.
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	profit := e.Profit()
	resp := LedgerEntryResponse{
		ID:               e.ID,
		PNR:              e.PNR,
		Kind:             string(e.Kind),
		Source:           e.Source,
		Beneficiary:      e.Beneficiary,
		TotalPurchase:    e.TotalPurchase(),
		TotalSale:        e.TotalSale(),
		Profit:           profit,
		CurrencyMismatch: profit.IsMismatch(),
		IssueDate:        e.IssueDate,
		EntryDate:        e.EntryDate,
		Notes:            e.Notes,
		Status:           string(e.Status),
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
		LastUpdatedAt:    e.LastUpdatedAt,
		LastUpdatedBy:    e.LastUpdatedBy,
	}
	if amount, ok := profit.Amount(); ok {
		display := utils.FormatMoney(amount, string(profit.Currency()))
		resp.ProfitDisplay = &display
	}

	switch e.Kind {
	case domain.KindSale:
		resp.Currency = string(e.Currency)
		resp.Passengers = make([]PassengerLineResponse, len(e.Passengers))
		for i, p := range e.Passengers {
			resp.Passengers[i] = PassengerLineResponse{
				ID:             p.ID,
				Name:           p.Name,
				PassportNumber: p.PassportNumber,
				PassengerType:  string(p.PassengerType),
				PurchasePrice:  p.PurchasePrice,
				SalePrice:      p.SalePrice,
				Profit:         p.Profit(),
				TicketNumber:   p.TicketNumber,
			}
		}
	case domain.KindChange:
		resp.SourceCurrency = string(e.SourceCurrency)
		resp.BeneficiaryCurrency = string(e.BeneficiaryCurrency)
		resp.SourceAmount = &e.SourceAmount
		resp.BeneficiaryAmount = &e.BeneficiaryAmount
	case domain.KindRefund:
		resp.Currency = string(e.Currency)
		resp.PurchasePrice = &e.PurchasePrice
		resp.SalePrice = &e.SalePrice
	}
	return resp
}

// ListLedgerEntriesResponse wraps a page of entries.
type ListLedgerEntriesResponse struct {
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToListLedgerEntriesResponse converts a page of entries.
func ToListLedgerEntriesResponse(entries []domain.LedgerEntry, nextToken *string) ListLedgerEntriesResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToLedgerEntryResponse(&entries[i])
	}
	return ListLedgerEntriesResponse{Entries: out, NextToken: nextToken}
}
