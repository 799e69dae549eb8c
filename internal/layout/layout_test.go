package layout

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/invoicepro/internal/domain/invoice"
)

func designInvoice() invoice.Invoice {
	return invoice.Invoice{
		Number:    "INV-0042",
		IssueDate: invoice.NewDate(2025, 6, 1),
		DueDate:   invoice.NewDate(2025, 7, 1),
		Template:  invoice.ThemeModern,
		Issuer:    invoice.Party{Name: "Studio", Address: "1 Main St\nSpringfield", Email: "hi@studio.test"},
		Recipient: invoice.Party{Name: "ACME Corp"},
		Items: []invoice.LineItem{{
			ID:          "item_1",
			Description: "Design",
			Quantity:    decimal.NewFromInt(2),
			Rate:        decimal.NewFromInt(500),
		}},
		TaxRate: decimal.NewFromInt(10),
	}
}

func manyItems(n int) invoice.Invoice {
	inv := designInvoice()
	inv.Items = make([]invoice.LineItem, n)
	for i := range inv.Items {
		inv.Items[i] = invoice.LineItem{
			ID:          fmt.Sprintf("item_%03d", i),
			Description: fmt.Sprintf("Row %03d", i),
			Quantity:    decimal.NewFromInt(1),
			Rate:        decimal.NewFromInt(10),
		}
	}
	return inv
}

func values(p Page) []string {
	var out []string
	for _, t := range p.Texts() {
		out = append(out, t.Value)
	}
	return out
}

func rowTexts(p Page) []Text {
	var out []Text
	for _, t := range p.Texts() {
		if strings.HasPrefix(t.Value, "Row ") {
			out = append(out, t)
		}
	}
	return out
}

func TestEngine_SinglePage(t *testing.T) {
	inv := designInvoice()
	pages := New(Options{}).Layout(&inv)
	require.Len(t, pages, 1)

	p := pages[0]
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 210.0, p.Width)
	assert.Equal(t, 297.0, p.Height)

	got := values(p)
	for _, want := range []string{
		"INVOICE", "INV-0042", "Studio", "Springfield", "ACME Corp",
		"06/01/2025", "07/01/2025", "Design", "$500.00",
		"Subtotal:", "$1000.00", "Tax (10%):", "$100.00", "Total:", "$1100.00",
		"Thank you for your business!",
	} {
		assert.Contains(t, got, want)
	}
	for _, v := range got {
		assert.NotContains(t, v, "Page ", "single page has no page numbers")
	}
}

func TestEngine_TableStartsAtFixedOffset(t *testing.T) {
	inv := designInvoice()
	p := New(Options{}).Layout(&inv)[0]

	for _, el := range p.Elements {
		if r, ok := el.(Rect); ok && r.Y > 40 {
			assert.Equal(t, 110.0, r.Y, "table header band")
			return
		}
	}
	t.Fatal("table header not found")
}

func TestEngine_TotalsAgreeWithCompute(t *testing.T) {
	inv := manyItems(7)
	inv.TaxRate = decimal.RequireFromString("8.25")
	totals := inv.Totals()

	pages := New(Options{}).Layout(&inv)
	got := values(pages[len(pages)-1])
	assert.Contains(t, got, "$"+totals.Subtotal.StringFixed(2))
	assert.Contains(t, got, "$"+totals.TaxAmount.StringFixed(2))
	assert.Contains(t, got, "$"+totals.Total.StringFixed(2))
	assert.Contains(t, got, "Tax (8.25%):")
}

func TestEngine_Paginates200Items(t *testing.T) {
	// Rows start 10mm under the table header at 110 and must end by 245,
	// which leaves room for exactly 20 rows on every page.
	opts := Options{RowHeight: 6, BottomMargin: 52, ContinuationTop: 110}
	inv := manyItems(200)

	pages := New(opts).Layout(&inv)
	require.Contains(t, []int{10, 11}, len(pages))

	seen := make(map[string]int)
	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		rows := rowTexts(p)
		assert.LessOrEqual(t, len(rows), 20)
		if i < 10 {
			assert.Len(t, rows, 20, "page %d", i+1)
		}
		for _, r := range rows {
			seen[r.Value]++
			// The row band spans [Y-0.7h, Y+0.3h]; it must end above the margin.
			assert.LessOrEqual(t, r.Y+0.3*6, 245.0+1e-9)
		}
		assert.Contains(t, values(p), fmt.Sprintf("Page %d of %d", i+1, len(pages)))
	}

	require.Len(t, seen, 200)
	for desc, n := range seen {
		assert.Equal(t, 1, n, desc)
	}

	last := values(pages[len(pages)-1])
	assert.Contains(t, last, "Total:")
	assert.Contains(t, last, "$2000.00")
	assert.Contains(t, last, "Thank you for your business!")
	assert.NotContains(t, values(pages[0]), "Thank you for your business!")
}

func TestEngine_ContinuationRepeatsTableHeader(t *testing.T) {
	inv := manyItems(40)
	pages := New(Options{}).Layout(&inv)
	require.Greater(t, len(pages), 1)

	for _, p := range pages[1:] {
		got := values(p)
		assert.Contains(t, got, "Description")
		assert.Contains(t, got, "INVOICE INV-0042 (continued)")
		assert.NotContains(t, got, "ACME Corp", "parties only on the first page")
	}
}

func TestEngine_DefaultCapacity(t *testing.T) {
	// First page: rows from 120 to 247 fit 12 rows. Continuation pages:
	// rows from 40 fit 20.
	inv := manyItems(32)
	pages := New(Options{}).Layout(&inv)
	require.GreaterOrEqual(t, len(pages), 2)
	assert.Len(t, rowTexts(pages[0]), 12)
	assert.Len(t, rowTexts(pages[1]), 20)
}

func TestEngine_ThemePalettes(t *testing.T) {
	for _, info := range invoice.Themes() {
		t.Run(string(info.ID), func(t *testing.T) {
			inv := designInvoice()
			inv.Template = info.ID
			p := New(Options{}).Layout(&inv)[0]
			pal := palettes[info.ID]
			assert.Contains(t, values(p), pal.Footer)
			assert.Contains(t, values(p), pal.Title)
		})
	}

	inv := designInvoice()
	inv.Template = "neon"
	p := New(Options{}).Layout(&inv)[0]
	assert.Contains(t, values(p), palettes[invoice.ThemeModern].Footer)
}

func TestEngine_EmptyItems(t *testing.T) {
	inv := designInvoice()
	inv.Items = nil
	pages := New(Options{}).Layout(&inv)
	require.Len(t, pages, 1)
	assert.Contains(t, values(pages[0]), "$0.00")
}

func TestWritePDF(t *testing.T) {
	inv := manyItems(30)
	inv.Issuer.Name = "Café Ünïcode"
	pages := New(Options{Currency: "EUR"}).Layout(&inv)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, pages))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, len(pages), bytes.Count(buf.Bytes(), []byte("/Type /Page\n")))

	require.Error(t, WritePDF(&buf, nil))
}

func TestFileName(t *testing.T) {
	inv := designInvoice()
	assert.Equal(t, "Invoice-INV-0042.pdf", FileName(&inv))
	inv.Number = ""
	assert.Equal(t, "Invoice-Draft.pdf", FileName(&inv))
}
