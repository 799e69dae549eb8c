package invoice

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTermDays is the default distance between issue and due date.
const PaymentTermDays = 30

// DraftDefaults carries the user preferences applied to a new invoice.
type DraftDefaults struct {
	Issuer   Party
	Template Theme
	TaxRate  decimal.Decimal
}

// NewDraft returns an unsaved invoice dated today with a single empty row.
func NewDraft(now time.Time, defaults DraftDefaults) Invoice {
	issued := DateOf(now)
	template := defaults.Template
	if !template.Valid() {
		template = DefaultTheme
	}
	return Invoice{
		IssueDate: issued,
		DueDate:   issued.AddDays(PaymentTermDays),
		Template:  template,
		Issuer:    defaults.Issuer,
		TaxRate:   defaults.TaxRate,
		Status:    StatusPending,
		Items:     []LineItem{NewLineItem()},
	}
}

// NumberFor formats the sequential invoice number for the n-th invoice.
func NumberFor(n int) string {
	return fmt.Sprintf("INV-%04d", n)
}

// Duplicate returns an unsaved copy of inv with a new number and fresh
// dates. Items keep their content but get new ids. Status resets to pending.
func Duplicate(inv Invoice, number string, now time.Time) Invoice {
	dup := inv.Clone()
	dup.ID = ""
	dup.CreatedAt = time.Time{}
	dup.UpdatedAt = time.Time{}
	dup.Number = number
	dup.IssueDate = DateOf(now)
	dup.DueDate = dup.IssueDate.AddDays(PaymentTermDays)
	dup.Status = StatusPending
	for i := range dup.Items {
		dup.Items[i].ID = NewItemID()
	}
	return dup
}
