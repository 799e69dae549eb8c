// Package format renders money, dates and percentages for display. Every
// output target formats through this package so the numbers agree.
package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/invoicepro/internal/domain/invoice"
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Formatter carries the display preferences.
type Formatter struct {
	Currency   string
	DateLayout string
}

// Default formats US dollars with US dates.
var Default = Formatter{Currency: "USD", DateLayout: "01/02/2006"}

// Symbol returns the prefix written before amounts.
func (f Formatter) Symbol() string {
	code := strings.ToUpper(strings.TrimSpace(f.Currency))
	if code == "" {
		code = "USD"
	}
	if s, ok := symbols[code]; ok {
		return s
	}
	return code + " "
}

// Money formats an amount rounded half away from zero to two decimals,
// without thousands separators.
func (f Formatter) Money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if strings.HasPrefix(s, "-") {
		return "-" + f.Symbol() + s[1:]
	}
	return f.Symbol() + s
}

// Date formats a calendar date; unset dates yield "".
func (f Formatter) Date(d invoice.Date) string {
	layout := f.DateLayout
	if layout == "" {
		layout = Default.DateLayout
	}
	return d.Format(layout)
}

// Percent formats a rate without trailing zeros, e.g. 8.5 or 10.
func Percent(d decimal.Decimal) string {
	return d.String()
}

// Number formats a quantity without trailing zeros.
func Number(d decimal.Decimal) string {
	return d.String()
}

// TaxLabel returns the caption of the tax line, e.g. "Tax (8.5%)".
func TaxLabel(rate decimal.Decimal) string {
	return "Tax (" + Percent(rate) + "%)"
}
