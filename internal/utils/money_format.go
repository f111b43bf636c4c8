package utils

import (
	"github.com/shopspring/decimal"
)

// DisplayPrecision is the number of decimal places shown to operators.
// Stored amounts keep their exact value; rounding only happens here.
const DisplayPrecision = 2

// FormatMoney renders amount with two decimal places, followed by the currency
// code when one is given.
// Example: 12.345 with "USD" returns "12.35 USD"
func FormatMoney(amount decimal.Decimal, currency string) string {
	s := amount.StringFixed(DisplayPrecision)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
