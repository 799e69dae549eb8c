// Package layout paginates invoices into pages of positioned drawing
// primitives and writes them as PDF.
package layout

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/format"
)

// Options control page geometry in millimetres and value formatting.
// Zero fields take the values of DefaultOptions.
type Options struct {
	PageWidth  float64
	PageHeight float64
	// BottomMargin is kept free of item rows and totals. The footer and page
	// numbers are drawn inside it.
	BottomMargin      float64
	FirstTableTop     float64
	ContinuationTop   float64
	TableHeaderHeight float64
	RowHeight         float64

	Currency   string
	DateLayout string
}

// DefaultOptions lays out A4 portrait pages.
func DefaultOptions() Options {
	return Options{
		PageWidth:         210,
		PageHeight:        297,
		BottomMargin:      50,
		FirstTableTop:     110,
		ContinuationTop:   30,
		TableHeaderHeight: 10,
		RowHeight:         10,
		Currency:          format.Default.Currency,
		DateLayout:        format.Default.DateLayout,
	}
}

const (
	margin       = 20.0
	totalsLead   = 10.0
	totalsLine   = 8.0
	totalsHeight = totalsLead + 2*totalsLine
	bodySize     = 10.0
)

// Engine lays out invoices. It is safe for concurrent use.
type Engine struct {
	opts Options
	f    format.Formatter
}

// New returns an Engine using opts.
func New(opts Options) *Engine {
	def := DefaultOptions()
	fill := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&opts.PageWidth, def.PageWidth)
	fill(&opts.PageHeight, def.PageHeight)
	fill(&opts.BottomMargin, def.BottomMargin)
	fill(&opts.FirstTableTop, def.FirstTableTop)
	fill(&opts.ContinuationTop, def.ContinuationTop)
	fill(&opts.TableHeaderHeight, def.TableHeaderHeight)
	fill(&opts.RowHeight, def.RowHeight)
	if opts.Currency == "" {
		opts.Currency = def.Currency
	}
	if opts.DateLayout == "" {
		opts.DateLayout = def.DateLayout
	}
	return &Engine{
		opts: opts,
		f:    format.Formatter{Currency: opts.Currency, DateLayout: opts.DateLayout},
	}
}

// Layout paginates inv. Item rows are never split across pages; a row that
// would cross into the bottom margin starts a new page that repeats the
// table header. The totals block follows the last row under the same rule.
// The page count is unbounded.
func (e *Engine) Layout(inv *invoice.Invoice) []Page {
	pal := paletteFor(inv.Template)
	limit := e.opts.PageHeight - e.opts.BottomMargin

	var pages []Page
	page := e.newPage(1)
	top := e.firstPageHeader(&page, inv, pal)
	y := e.tableHeader(&page, top, pal)

	next := func() {
		pages = append(pages, page)
		page = e.newPage(len(pages) + 1)
		e.continuationHeader(&page, inv, pal)
	}

	for i, li := range inv.Items {
		if y+e.opts.RowHeight > limit {
			next()
			y = e.tableHeader(&page, e.opts.ContinuationTop, pal)
		}
		e.row(&page, y, i, li, pal)
		y += e.opts.RowHeight
	}

	if y+totalsHeight > limit {
		next()
		y = e.opts.ContinuationTop
	}
	e.totals(&page, y, inv, pal)
	e.footer(&page, pal)
	pages = append(pages, page)

	if n := len(pages); n > 1 {
		for i := range pages {
			pages[i].add(Text{
				X:     e.opts.PageWidth - margin,
				Y:     e.opts.PageHeight - 15,
				Value: fmt.Sprintf("Page %d of %d", i+1, n),
				Align: AlignRight,
				Size:  9,
				Color: pal.Muted,
			})
		}
	}
	return pages
}

func (e *Engine) newPage(n int) Page {
	return Page{Number: n, Width: e.opts.PageWidth, Height: e.opts.PageHeight}
}

// firstPageHeader draws the title, parties and dates and returns the top of
// the item table.
func (e *Engine) firstPageHeader(p *Page, inv *invoice.Invoice, pal palette) float64 {
	w := e.opts.PageWidth
	titleColor, numberColor := pal.Text, pal.Muted
	if pal.Band {
		band := pal.Accent
		p.add(Rect{X: 0, Y: 0, W: w, H: 40, Fill: &band})
		titleColor, numberColor = white, white
	}
	p.add(
		Text{X: margin, Y: 25, Value: pal.Title, Style: Bold, Size: 28, Color: titleColor},
		Text{X: margin, Y: 35, Value: inv.Number, Size: 14, Color: numberColor},
	)
	if pal.Band && inv.Issuer.Name != "" {
		p.add(Text{X: w - margin, Y: 25, Value: inv.Issuer.Name, Align: AlignRight, Style: Bold, Size: 14, Color: white})
	}

	const blockTop = 55.0
	bottom := math.Max(
		e.partyBlock(p, margin, blockTop, "From:", inv.Issuer, pal),
		e.partyBlock(p, w/2, blockTop, "To:", inv.Recipient, pal),
	)

	dates := [...]struct{ label, value string }{
		{"Date:", e.f.Date(inv.IssueDate)},
		{"Due Date:", e.f.Date(inv.DueDate)},
	}
	for i, d := range dates {
		y := blockTop + float64(i)*7
		p.add(
			Text{X: w - 60, Y: y, Value: d.label, Style: Bold, Size: bodySize, Color: pal.Text},
			Text{X: w - margin, Y: y, Value: d.value, Align: AlignRight, Size: bodySize, Color: pal.Text},
		)
	}

	return math.Max(e.opts.FirstTableTop, bottom+12)
}

// partyBlock draws a labelled contact block and returns the baseline of its
// last line.
func (e *Engine) partyBlock(p *Page, x, y float64, label string, party invoice.Party, pal palette) float64 {
	p.add(Text{X: x, Y: y, Value: label, Style: Bold, Size: 12, Color: pal.AccentDark})
	y += 7
	p.add(Text{X: x, Y: y, Value: party.Name, Style: Bold, Size: bodySize, Color: pal.Text})
	for _, line := range party.AddressLines() {
		y += 5
		p.add(Text{X: x, Y: y, Value: line, Size: bodySize, Color: pal.Muted})
	}
	if party.Email != "" {
		y += 5
		p.add(Text{X: x, Y: y, Value: party.Email, Size: bodySize, Color: pal.Muted})
	}
	return y
}

func (e *Engine) continuationHeader(p *Page, inv *invoice.Invoice, pal palette) {
	title := fmt.Sprintf("%s %s (continued)", pal.Title, inv.Number)
	if pal.Band {
		band := pal.Accent
		p.add(
			Rect{X: 0, Y: 0, W: e.opts.PageWidth, H: 15, Fill: &band},
			Text{X: margin, Y: 10, Value: title, Style: Bold, Size: 12, Color: white},
		)
		return
	}
	p.add(Text{X: margin, Y: 15, Value: title, Size: 12, Color: pal.Muted})
}

// column anchors of the item table
func (e *Engine) columns() (desc, qty, rate, amount float64) {
	w := e.opts.PageWidth
	return margin + 5, w - 85, w - 55, w - margin - 5
}

// tableHeader draws the column captions at top and returns the top of the
// first row.
func (e *Engine) tableHeader(p *Page, top float64, pal palette) float64 {
	h := e.opts.TableHeaderHeight
	color := pal.Accent
	if pal.Band {
		fill := pal.Accent
		p.add(Rect{X: margin, Y: top, W: e.opts.PageWidth - 2*margin, H: h, Fill: &fill})
		color = white
	} else {
		p.add(Line{X1: margin, Y1: top + h, X2: e.opts.PageWidth - margin, Y2: top + h, Width: 0.5, Color: pal.Accent})
	}
	desc, qty, rate, amount := e.columns()
	base := top + h*0.7
	p.add(
		Text{X: desc, Y: base, Value: "Description", Style: Bold, Size: bodySize, Color: color},
		Text{X: qty, Y: base, Value: "Qty", Align: AlignCenter, Style: Bold, Size: bodySize, Color: color},
		Text{X: rate, Y: base, Value: "Rate", Align: AlignRight, Style: Bold, Size: bodySize, Color: color},
		Text{X: amount, Y: base, Value: "Amount", Align: AlignRight, Style: Bold, Size: bodySize, Color: color},
	)
	return top + h
}

func (e *Engine) row(p *Page, y float64, i int, li invoice.LineItem, pal palette) {
	h := e.opts.RowHeight
	if pal.Stripe != nil && i%2 == 1 {
		stripe := *pal.Stripe
		p.add(Rect{X: margin, Y: y, W: e.opts.PageWidth - 2*margin, H: h, Fill: &stripe})
	}
	desc, qty, rate, amount := e.columns()
	base := y + h*0.7
	p.add(
		Text{X: desc, Y: base, Value: li.Description, Size: bodySize, Color: pal.Text},
		Text{X: qty, Y: base, Value: format.Number(li.Quantity), Align: AlignCenter, Size: bodySize, Color: pal.Text},
		Text{X: rate, Y: base, Value: e.f.Money(li.Rate), Align: AlignRight, Size: bodySize, Color: pal.Text},
		Text{X: amount, Y: base, Value: e.f.Money(li.Amount()), Align: AlignRight, Size: bodySize, Color: pal.Text},
	)
	if !pal.Band {
		p.add(Line{X1: margin, Y1: y + h, X2: e.opts.PageWidth - margin, Y2: y + h, Width: 0.2, Color: rule})
	}
}

func (e *Engine) totals(p *Page, y float64, inv *invoice.Invoice, pal palette) {
	t := inv.Totals()
	w := e.opts.PageWidth
	labelX := w - 110
	_, _, _, valueX := e.columns()

	lines := [...]struct {
		label string
		value decimal.Decimal
	}{
		{"Subtotal:", t.Subtotal},
		{format.TaxLabel(inv.TaxRate) + ":", t.TaxAmount},
		{"Total:", t.Total},
	}
	y += totalsLead
	for i, l := range lines {
		if i > 0 {
			y += totalsLine
		}
		style, size, color := Regular, bodySize, pal.Text
		if i == len(lines)-1 {
			style, size, color = Bold, 14, pal.AccentDark
			p.add(Line{X1: labelX, Y1: y - 6, X2: w - margin, Y2: y - 6, Width: 0.5, Color: pal.Accent})
		}
		p.add(
			Text{X: labelX, Y: y, Value: l.label, Style: style, Size: size, Color: color},
			Text{X: valueX, Y: y, Value: e.f.Money(l.value), Align: AlignRight, Style: style, Size: size, Color: color},
		)
	}
}

func (e *Engine) footer(p *Page, pal palette) {
	center := e.opts.PageWidth / 2
	y := e.opts.PageHeight - 30
	p.add(Text{X: center, Y: y, Value: pal.Footer, Align: AlignCenter, Size: bodySize, Color: pal.Muted})
	if pal.Note != "" {
		p.add(Text{X: center, Y: y + 6, Value: pal.Note, Align: AlignCenter, Style: Italic, Size: 8, Color: pal.Muted})
	}
}

// FileName returns the download name of the PDF for inv.
func FileName(inv *invoice.Invoice) string {
	number := inv.Number
	if number == "" {
		number = "Draft"
	}
	return "Invoice-" + number + ".pdf"
}
