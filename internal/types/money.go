// README: Money value object shared by preference extraction and prompt rendering.
package types

import "github.com/shopspring/decimal"

type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

// DefaultCurrency is shown before any budget has been extracted.
const DefaultCurrency = CurrencyINR

// Money keeps the amount as an exact decimal; it marshals as a JSON string.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

func NewMoney(amount string, currency Currency) Money {
	return Money{Amount: decimal.RequireFromString(amount), Currency: currency}
}

// IsZero reports whether no amount has been set.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Equal compares amounts numerically, so 1000.50 equals 1000.5.
func (m Money) Equal(o Money) bool {
	return m.Currency == o.Currency && m.Amount.Equal(o.Amount)
}

// String renders "INR 230000", without trailing zeros.
func (m Money) String() string {
	return string(m.Currency) + " " + m.Amount.String()
}
