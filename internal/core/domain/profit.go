package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Profit is either an amount in a single currency or a currency mismatch.
// The fields are unexported so a mismatch cannot be read as zero by accident.
type Profit struct {
	mismatch bool
	amount   decimal.Decimal
	currency Currency
}

// ProfitOf returns a well-defined profit (negative means loss).
func ProfitOf(amount decimal.Decimal, currency Currency) Profit {
	return Profit{amount: amount, currency: currency}
}

// MismatchedProfit returns the currency-mismatch variant.
func MismatchedProfit() Profit {
	return Profit{mismatch: true}
}

// IsMismatch reports whether the profit is undefined because of a currency mismatch.
func (p Profit) IsMismatch() bool { return p.mismatch }

// Amount returns the amount and true, or zero and false for a mismatch.
func (p Profit) Amount() (decimal.Decimal, bool) {
	if p.mismatch {
		return decimal.Zero, false
	}
	return p.amount, true
}

// Currency returns the currency of a defined profit, empty for a mismatch.
func (p Profit) Currency() Currency { return p.currency }

// IsLoss reports a defined, negative profit.
func (p Profit) IsLoss() bool {
	return !p.mismatch && p.amount.IsNegative()
}

type profitJSON struct {
	CurrencyMismatch bool             `json:"currencyMismatch"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Currency         Currency         `json:"currency,omitempty"`
}

// MarshalJSON renders {"currencyMismatch":true} without any amount for a mismatch.
func (p Profit) MarshalJSON() ([]byte, error) {
	if p.mismatch {
		return json.Marshal(profitJSON{CurrencyMismatch: true})
	}
	amount := p.amount
	return json.Marshal(profitJSON{Amount: &amount, Currency: p.currency})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *Profit) UnmarshalJSON(data []byte) error {
	var raw profitJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.CurrencyMismatch || raw.Amount == nil {
		*p = MismatchedProfit()
		return nil
	}
	*p = ProfitOf(*raw.Amount, raw.Currency)
	return nil
}
