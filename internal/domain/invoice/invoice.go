package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the payment state of an invoice.
type Status string

const (
	// StatusPending marks an invoice that has not been paid yet.
	StatusPending Status = "pending"
	// StatusPaid marks a settled invoice.
	StatusPaid Status = "paid"
)

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusPaid {
		return StatusPending
	}
	return StatusPaid
}

// Party holds the contact block of the issuer or the recipient.
type Party struct {
	Name    string
	Email   string
	Address string
}

// AddressLines splits the free-text postal address into display lines.
func (p Party) AddressLines() []string {
	if strings.TrimSpace(p.Address) == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(p.Address, "\r\n", "\n"), "\n")
}

// LineItem is one billable row. Its amount is always derived from quantity
// and rate.
type LineItem struct {
	ID          string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// NewLineItem returns an empty row with a fresh identifier and a quantity
// of one.
func NewLineItem() LineItem {
	return LineItem{
		ID:       NewItemID(),
		Quantity: decimal.NewFromInt(1),
		Rate:     decimal.Zero,
	}
}

// Amount returns quantity × rate rounded to two decimal places.
func (li LineItem) Amount() decimal.Decimal {
	return li.Quantity.Mul(li.Rate).Round(2)
}

// Invoice is a billing document. Totals are never stored, see Totals.
type Invoice struct {
	ID        string
	Number    string
	IssueDate Date
	DueDate   Date
	Template  Theme
	Issuer    Party
	Recipient Party
	Items     []LineItem
	TaxRate   decimal.Decimal
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Totals computes subtotal, tax and total from the current line items.
func (inv *Invoice) Totals() Totals {
	return Compute(inv.Items, inv.TaxRate)
}

// IsNew reports whether the invoice has never been saved.
func (inv *Invoice) IsNew() bool {
	return inv.ID == ""
}

// Clone returns a deep copy; the item slice is not shared.
func (inv Invoice) Clone() Invoice {
	if inv.Items != nil {
		items := make([]LineItem, len(inv.Items))
		copy(items, inv.Items)
		inv.Items = items
	}
	return inv
}

// NewInvoiceID returns an opaque invoice identifier.
func NewInvoiceID() string {
	return "inv_" + uuid.NewString()
}

// NewItemID returns an opaque line item identifier.
func NewItemID() string {
	return "item_" + uuid.NewString()
}
