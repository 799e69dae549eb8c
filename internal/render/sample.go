package render

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/invoicepro/internal/domain/invoice"
)

// Sample returns the demonstration invoice used for theme previews, dated
// relative to now.
func Sample(now time.Time) invoice.Invoice {
	issued := invoice.DateOf(now)
	row := func(description string, qty, rate int64) invoice.LineItem {
		return invoice.LineItem{
			ID:          invoice.NewItemID(),
			Description: description,
			Quantity:    decimal.NewFromInt(qty),
			Rate:        decimal.NewFromInt(rate),
		}
	}
	return invoice.Invoice{
		Number:    "INV-0001",
		IssueDate: issued,
		DueDate:   issued.AddDays(invoice.PaymentTermDays),
		Issuer: invoice.Party{
			Name:    "Your Company Name",
			Email:   "contact@yourcompany.com",
			Address: "123 Business Street\nCity, State 12345",
		},
		Recipient: invoice.Party{
			Name:    "Client Name",
			Email:   "client@email.com",
			Address: "456 Client Avenue\nClient City, State 67890",
		},
		Items: []invoice.LineItem{
			row("Web Development Services", 1, 2500),
			row("UI/UX Design", 2, 750),
			row("Consultation Hours", 5, 150),
		},
		TaxRate: decimal.RequireFromString("8.5"),
		Status:  invoice.StatusPending,
	}
}
