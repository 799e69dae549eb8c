package invoice

import "github.com/shopspring/decimal"

// Item fields addressable through Builder.UpdateItem.
const (
	FieldDescription = "description"
	FieldQuantity    = "quantity"
	FieldRate        = "rate"
)

// Builder edits the line items of a single invoice. Every change goes
// straight to the wrapped invoice, so totals read through Builder.Totals or
// Invoice.Totals are always current.
type Builder struct {
	inv *Invoice
}

// NewBuilder returns a Builder editing inv in place.
func NewBuilder(inv *Invoice) *Builder {
	return &Builder{inv: inv}
}

// Invoice returns the invoice being edited.
func (b *Builder) Invoice() *Invoice { return b.inv }

// Items returns a copy of the current rows in order.
func (b *Builder) Items() []LineItem {
	out := make([]LineItem, len(b.inv.Items))
	copy(out, b.inv.Items)
	return out
}

// Totals recomputes the invoice totals.
func (b *Builder) Totals() Totals { return b.inv.Totals() }

// AddItem appends a default row and returns it.
func (b *Builder) AddItem() LineItem {
	item := NewLineItem()
	b.inv.Items = append(b.inv.Items, item)
	return item
}

// AddPresetItem appends a row with the given description and rate.
func (b *Builder) AddPresetItem(description string, rate decimal.Decimal) LineItem {
	item := NewLineItem()
	item.Description = description
	item.Rate = rate
	b.inv.Items = append(b.inv.Items, item)
	return item
}

// RemoveItem deletes the row with the given id. It reports whether a row was
// removed.
func (b *Builder) RemoveItem(id string) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	b.inv.Items = append(b.inv.Items[:i], b.inv.Items[i+1:]...)
	return true
}

// UpdateItem sets one field of a row from raw form input. Numeric input that
// does not parse is stored as zero. Unknown ids and fields are ignored.
func (b *Builder) UpdateItem(id, field, value string) bool {
	switch field {
	case FieldDescription:
		return b.SetDescription(id, value)
	case FieldQuantity:
		return b.SetQuantity(id, parseInput(value))
	case FieldRate:
		return b.SetRate(id, parseInput(value))
	default:
		return false
	}
}

// SetDescription replaces the description of a row.
func (b *Builder) SetDescription(id, description string) bool {
	return b.update(id, func(li *LineItem) { li.Description = description })
}

// SetQuantity replaces the quantity of a row. Negative values are kept.
func (b *Builder) SetQuantity(id string, quantity decimal.Decimal) bool {
	return b.update(id, func(li *LineItem) { li.Quantity = quantity })
}

// SetRate replaces the unit price of a row. Negative values are kept.
func (b *Builder) SetRate(id string, rate decimal.Decimal) bool {
	return b.update(id, func(li *LineItem) { li.Rate = rate })
}

// DuplicateItem appends a copy of the row with a fresh id.
func (b *Builder) DuplicateItem(id string) (LineItem, bool) {
	i := b.index(id)
	if i < 0 {
		return LineItem{}, false
	}
	dup := b.inv.Items[i]
	dup.ID = NewItemID()
	b.inv.Items = append(b.inv.Items, dup)
	return dup, true
}

// MoveUp swaps the row with its predecessor. The first row stays put.
func (b *Builder) MoveUp(id string) bool {
	i := b.index(id)
	if i <= 0 {
		return false
	}
	b.inv.Items[i-1], b.inv.Items[i] = b.inv.Items[i], b.inv.Items[i-1]
	return true
}

// MoveDown swaps the row with its successor. The last row stays put.
func (b *Builder) MoveDown(id string) bool {
	i := b.index(id)
	if i < 0 || i == len(b.inv.Items)-1 {
		return false
	}
	b.inv.Items[i], b.inv.Items[i+1] = b.inv.Items[i+1], b.inv.Items[i]
	return true
}

// LoadItems replaces all rows. Rows without an id get one.
func (b *Builder) LoadItems(items []LineItem) {
	out := make([]LineItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = NewItemID()
		}
		out[i] = item
	}
	b.inv.Items = out
}

// ClearItems removes every row.
func (b *Builder) ClearItems() {
	b.inv.Items = nil
}

func (b *Builder) index(id string) int {
	for i := range b.inv.Items {
		if b.inv.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Builder) update(id string, fn func(*LineItem)) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	fn(&b.inv.Items[i])
	return true
}

func parseInput(s string) decimal.Decimal {
	d, err := ParseNumber(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
