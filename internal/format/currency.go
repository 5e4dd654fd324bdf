// Package format renders money for display.
package format

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencyFormatter formats amounts in the user's currency.
type CurrencyFormatter interface {
	FormatCurrency(amount decimal.Decimal) string
	CurrencySymbol() string
}

// Currency formats amounts for one ISO 4217 currency and locale.
type Currency struct {
	unit    currency.Unit
	printer *message.Printer
	symbol  string
	scale   int
}

var _ CurrencyFormatter = (*Currency)(nil)

// NewCurrency returns a formatter for an ISO code like "USD" and a BCP 47
// locale like "en-US".
func NewCurrency(code, locale string) (*Currency, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	p := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)

	return &Currency{
		unit:    unit,
		printer: p,
		symbol:  p.Sprint(currency.NarrowSymbol(unit)),
		scale:   scale,
	}, nil
}

// FormatCurrency renders amount with the currency symbol, locale grouping and
// the currency's standard number of decimals, e.g. "$1,234.50" or "-$3.00".
func (c *Currency) FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(int32(c.scale))
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	n := c.printer.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(c.scale)))
	return sign + c.symbol + n
}

// CurrencySymbol returns the narrow symbol, e.g. "$".
func (c *Currency) CurrencySymbol() string {
	return c.symbol
}

// Code returns the ISO 4217 code.
func (c *Currency) Code() string {
	return c.unit.String()
}
