package invoice

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Bounds on decoded numbers. Larger exponents make Compute and the encoder
// expand the value to millions of digits.
const (
	MaxExponent = 30
	MaxDigits   = 40
)

// ErrNumberRange is returned for numbers outside MaxExponent or MaxDigits.
var ErrNumberRange = errors.New("number out of range")

// ParseNumber parses a quantity, rate or percentage. Surrounding quotes and
// spaces are ignored; "", "null" and quoted empties read as zero.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if s == "" || s == "null" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse number %q", s)
	}
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent || d.NumDigits() > MaxDigits {
		return decimal.Zero, errors.Wrapf(ErrNumberRange, "parse number %q", s)
	}
	return d, nil
}

// number is a decimal written as a bare JSON number. Quoted numbers, empty
// strings and null are accepted on read.
type number decimal.Decimal

func (n number) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(n).String()), nil
}

func (n *number) UnmarshalJSON(data []byte) error {
	d, err := ParseNumber(string(data))
	if err != nil {
		return err
	}
	*n = number(d)
	return nil
}

type itemJSON struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    number `json:"quantity"`
	Rate        number `json:"rate"`
	Amount      number `json:"amount"`
}

type invoiceJSON struct {
	ID             string     `json:"id,omitempty"`
	Number         string     `json:"number"`
	Date           Date       `json:"date"`
	DueDate        Date       `json:"dueDate"`
	Template       string     `json:"template"`
	CompanyName    string     `json:"companyName"`
	CompanyEmail   string     `json:"companyEmail"`
	CompanyAddress string     `json:"companyAddress"`
	ClientName     string     `json:"clientName"`
	ClientEmail    string     `json:"clientEmail"`
	ClientAddress  string     `json:"clientAddress"`
	Items          []itemJSON `json:"items"`
	TaxRate        number     `json:"taxRate"`
	Subtotal       number     `json:"subtotal"`
	TaxAmount      number     `json:"taxAmount"`
	Total          number     `json:"total"`
	Status         string     `json:"status"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// MarshalJSON writes the line item with its derived amount.
func (li LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		ID:          li.ID,
		Description: li.Description,
		Quantity:    number(li.Quantity),
		Rate:        number(li.Rate),
		Amount:      number(li.Amount()),
	})
}

// UnmarshalJSON reads a line item. A stored amount is ignored and a missing
// id is replaced with a fresh one.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var w itemJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "line item")
	}
	*li = w.item()
	return nil
}

func (w itemJSON) item() LineItem {
	id := w.ID
	if id == "" {
		id = NewItemID()
	}
	return LineItem{
		ID:          id,
		Description: w.Description,
		Quantity:    decimal.Decimal(w.Quantity),
		Rate:        decimal.Decimal(w.Rate),
	}
}

// MarshalJSON writes the flat document shape including derived totals.
func (inv Invoice) MarshalJSON() ([]byte, error) {
	totals := inv.Totals()
	w := invoiceJSON{
		ID:             inv.ID,
		Number:         inv.Number,
		Date:           inv.IssueDate,
		DueDate:        inv.DueDate,
		Template:       string(inv.Template),
		CompanyName:    inv.Issuer.Name,
		CompanyEmail:   inv.Issuer.Email,
		CompanyAddress: inv.Issuer.Address,
		ClientName:     inv.Recipient.Name,
		ClientEmail:    inv.Recipient.Email,
		ClientAddress:  inv.Recipient.Address,
		Items:          make([]itemJSON, 0, len(inv.Items)),
		TaxRate:        number(inv.TaxRate),
		Subtotal:       number(totals.Subtotal),
		TaxAmount:      number(totals.TaxAmount),
		Total:          number(totals.Total),
		Status:         string(inv.Status),
	}
	if w.Template == "" {
		w.Template = string(DefaultTheme)
	}
	if w.Status == "" {
		w.Status = string(StatusPending)
	}
	for _, li := range inv.Items {
		w.Items = append(w.Items, itemJSON{
			ID:          li.ID,
			Description: li.Description,
			Quantity:    number(li.Quantity),
			Rate:        number(li.Rate),
			Amount:      number(li.Amount()),
		})
	}
	if !inv.CreatedAt.IsZero() {
		t := inv.CreatedAt.UTC()
		w.CreatedAt = &t
	}
	if !inv.UpdatedAt.IsZero() {
		t := inv.UpdatedAt.UTC()
		w.UpdatedAt = &t
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the flat document shape. Derived totals and unknown
// fields are ignored.
func (inv *Invoice) UnmarshalJSON(data []byte) error {
	var w invoiceJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "invoice")
	}
	out := Invoice{
		ID:        w.ID,
		Number:    w.Number,
		IssueDate: w.Date,
		DueDate:   w.DueDate,
		Template:  ParseTheme(w.Template),
		Issuer: Party{
			Name:    w.CompanyName,
			Email:   w.CompanyEmail,
			Address: w.CompanyAddress,
		},
		Recipient: Party{
			Name:    w.ClientName,
			Email:   w.ClientEmail,
			Address: w.ClientAddress,
		},
		TaxRate: decimal.Decimal(w.TaxRate),
		Status:  StatusPending,
	}
	if Status(w.Status) == StatusPaid {
		out.Status = StatusPaid
	}
	if len(w.Items) > 0 {
		out.Items = make([]LineItem, 0, len(w.Items))
		for _, item := range w.Items {
			out.Items = append(out.Items, item.item())
		}
	}
	if w.CreatedAt != nil {
		out.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		out.UpdatedAt = *w.UpdatedAt
	}
	*inv = out
	return nil
}
