package mapping

import (
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelLedgerEntry converts a domain LedgerEntry to its row and passenger rows.
// Columns that do not belong to the entry kind are left NULL.
func ToModelLedgerEntry(d domain.LedgerEntry) (models.LedgerEntry, []models.Passenger) {
	m := models.LedgerEntry{
		EntryID:     d.ID,
		PNR:         d.PNR,
		Kind:        string(d.Kind),
		Source:      d.Source,
		Beneficiary: d.Beneficiary,
		IssueDate:   d.IssueDate,
		EntryDate:   d.EntryDate,
		Notes:       d.Notes,
		Status:      models.EntryStatus(d.Status),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	switch d.Kind {
	case domain.KindChange:
		m.SourceCurrency = currencyPtr(d.SourceCurrency)
		m.BeneficiaryCurrency = currencyPtr(d.BeneficiaryCurrency)
		m.SourceAmount = decimalPtr(d.SourceAmount)
		m.BeneficiaryAmount = decimalPtr(d.BeneficiaryAmount)
	case domain.KindRefund:
		m.CurrencyCode = currencyPtr(d.Currency)
		m.PurchasePrice = decimalPtr(d.PurchasePrice)
		m.SalePrice = decimalPtr(d.SalePrice)
	default:
		m.CurrencyCode = currencyPtr(d.Currency)
	}

	passengers := make([]models.Passenger, len(d.Passengers))
	for i, p := range d.Passengers {
		passengers[i] = models.Passenger{
			PassengerID:    p.ID,
			EntryID:        d.ID,
			Position:       i,
			Name:           p.Name,
			PassportNumber: p.PassportNumber,
			PassengerType:  string(p.PassengerType),
			PurchasePrice:  p.PurchasePrice,
			SalePrice:      p.SalePrice,
			TicketNumber:   p.TicketNumber,
		}
	}
	return m, passengers
}

// ToDomainLedgerEntry converts a row and its passengers (already in position order) to a domain LedgerEntry.
func ToDomainLedgerEntry(m models.LedgerEntry, passengers []models.Passenger) domain.LedgerEntry {
	d := domain.LedgerEntry{
		ID:                  m.EntryID,
		PNR:                 m.PNR,
		Kind:                domain.EntryKind(m.Kind),
		Source:              m.Source,
		Beneficiary:         m.Beneficiary,
		Currency:            derefCurrency(m.CurrencyCode),
		SourceCurrency:      derefCurrency(m.SourceCurrency),
		BeneficiaryCurrency: derefCurrency(m.BeneficiaryCurrency),
		SourceAmount:        derefDecimal(m.SourceAmount),
		BeneficiaryAmount:   derefDecimal(m.BeneficiaryAmount),
		PurchasePrice:       derefDecimal(m.PurchasePrice),
		SalePrice:           derefDecimal(m.SalePrice),
		IssueDate:           m.IssueDate.UTC(),
		EntryDate:           m.EntryDate.UTC(),
		Notes:               m.Notes,
		Status:              domain.EntryStatus(m.Status),
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
	if len(passengers) > 0 {
		d.Passengers = make([]domain.PassengerLine, len(passengers))
		for i, p := range passengers {
			d.Passengers[i] = domain.PassengerLine{
				ID:             p.PassengerID,
				Name:           p.Name,
				PassportNumber: p.PassportNumber,
				PassengerType:  domain.PassengerType(p.PassengerType),
				PurchasePrice:  p.PurchasePrice,
				SalePrice:      p.SalePrice,
				TicketNumber:   p.TicketNumber,
			}
		}
	}
	return d
}

func currencyPtr(c domain.Currency) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

func derefCurrency(s *string) domain.Currency {
	if s == nil {
		return ""
	}
	return domain.Currency(*s)
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
