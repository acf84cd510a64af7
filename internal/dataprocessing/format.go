package dataprocessing

import (
	"fmt"
	"math"

	money "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the symbol used when none is configured.
const DefaultCurrency = "Rp"

// CurrencyFormatter renders amounts as "Rp 1,234,567": whole units,
// comma thousands, half-to-even rounding.
type CurrencyFormatter struct {
	symbol   string
	positive *money.Formatter
	negative *money.Formatter
}

// NewCurrencyFormatter creates a formatter for symbol.
func NewCurrencyFormatter(symbol string) *CurrencyFormatter {
	if symbol == "" {
		symbol = DefaultCurrency
	}
	return &CurrencyFormatter{
		symbol:   symbol,
		positive: money.NewFormatter(0, ".", ",", symbol, "$ 1"),
		negative: money.NewFormatter(0, ".", ",", symbol, "$ -1"),
	}
}

var defaultFormatter = NewCurrencyFormatter(DefaultCurrency)

// DefaultFormatter returns the "Rp" formatter.
func DefaultFormatter() *CurrencyFormatter {
	return defaultFormatter
}

// Format renders v. Non-finite amounts are printed as-is after the symbol.
func (f *CurrencyFormatter) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%s %v", f.symbol, v)
	}

	units := decimal.NewFromFloat(v).RoundBank(0)
	if units.IsNegative() {
		return f.negative.Format(units.Neg().IntPart())
	}
	return f.positive.Format(units.IntPart())
}
