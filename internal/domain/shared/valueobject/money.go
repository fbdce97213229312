package valueobject

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyBRL is the only currency the shop sells in
const CurrencyBRL = "BRL"

// Money is an immutable amount in Brazilian reais. Arithmetic keeps full
// precision; Cents and Display round half away from zero.
type Money struct {
	amount decimal.Decimal
}

// NewMoneyBRL wraps a decimal amount
func NewMoneyBRL(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// ParseMoney parses a decimal string such as "129.90"
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{amount: d}, nil
}

// ZeroBRL returns R$ 0,00
func ZeroBRL() Money {
	return Money{}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Cents returns the amount rounded to whole centavos
func (m Money) Cents() int64 {
	return m.amount.Shift(2).Round(0).IntPart()
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Add returns m + other
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Times returns m multiplied by a quantity
func (m Money) Times(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

// Equals compares amounts numerically, so 7.5 equals 7.50
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String returns the amount with two decimals and the currency code
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + CurrencyBRL
}

// Display formats the amount the way the storefront shows prices, with a
// comma decimal separator and no grouping: "R$ 1234,50"
func (m Money) Display() string {
	return "R$ " + strings.Replace(m.amount.StringFixed(2), ".", ",", 1)
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON writes {"amount":"42.10","currency":"BRL"}
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.StringFixed(2), Currency: CurrencyBRL})
}

// UnmarshalJSON reads the MarshalJSON form. A missing currency means BRL;
// any other currency is rejected.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency != "" && v.Currency != CurrencyBRL {
		return fmt.Errorf("unsupported currency %q", v.Currency)
	}
	parsed, err := ParseMoney(v.Amount)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
