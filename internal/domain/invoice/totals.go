package invoice

import "github.com/shopspring/decimal"

// Totals holds the derived monetary values of an invoice. They are not
// rounded; display code rounds to two decimals.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Compute derives the totals for items taxed at taxRate percent.
//
// The subtotal is the plain sum of item amounts, the tax is
// subtotal × taxRate / 100 and the total is their sum. An empty item list
// yields zeros.
func Compute(items []LineItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
	}
	// Shifting by two places divides by 100 without a precision limit.
	tax := subtotal.Mul(taxRate).Shift(-2)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}
