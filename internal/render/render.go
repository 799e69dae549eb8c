// Package render produces themed HTML for invoices.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/format"
)

//go:embed templates/*.gohtml
var files embed.FS

var templates = template.Must(template.ParseFS(files, "templates/*.gohtml"))

// Options configure number and date display.
type Options struct {
	Currency   string
	DateLayout string
}

// Renderer turns invoices into HTML. It never modifies its input.
type Renderer struct {
	f   format.Formatter
	now func() time.Time
}

// New returns a Renderer with the given display options.
func New(opts Options) *Renderer {
	f := format.Default
	if opts.Currency != "" {
		f.Currency = opts.Currency
	}
	if opts.DateLayout != "" {
		f.DateLayout = opts.DateLayout
	}
	return &Renderer{f: f, now: time.Now}
}

// Fragment renders the styled invoice markup for embedding in a page.
// Unknown themes render with the default theme.
func (r *Renderer) Fragment(inv *invoice.Invoice, theme invoice.Theme) (string, error) {
	return r.execute("invoice", inv, theme)
}

// Document renders a standalone HTML document with inline styles and no
// scripts, suitable for printing or download.
func (r *Renderer) Document(inv *invoice.Invoice, theme invoice.Theme) (string, error) {
	return r.execute("document", inv, theme)
}

// Preview renders the sample invoice shown in template pickers.
func (r *Renderer) Preview(theme invoice.Theme) (string, error) {
	sample := Sample(r.now())
	return r.Fragment(&sample, theme)
}

func (r *Renderer) execute(name string, inv *invoice.Invoice, theme invoice.Theme) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, r.view(inv, theme)); err != nil {
		return "", errors.Wrapf(err, "execute %s template", name)
	}
	return buf.String(), nil
}

type partyView struct {
	Name  string
	Email string
	Lines []string
}

type itemView struct {
	Description string
	Quantity    string
	Rate        string
	Amount      string
}

type view struct {
	style
	Theme     invoice.Theme
	Number    string
	Badge     string
	Issuer    partyView
	Recipient partyView
	IssueDate string
	DueDate   string
	Items     []itemView
	Subtotal  string
	TaxLabel  string
	TaxAmount string
	Total     string
}

func (r *Renderer) view(inv *invoice.Invoice, theme invoice.Theme) view {
	theme, st := styleFor(theme)
	totals := inv.Totals()

	v := view{
		style:     st,
		Theme:     theme,
		Number:    inv.Number,
		Issuer:    party(inv.Issuer),
		Recipient: party(inv.Recipient),
		IssueDate: r.f.Date(inv.IssueDate),
		DueDate:   r.f.Date(inv.DueDate),
		Items:     make([]itemView, 0, len(inv.Items)),
		Subtotal:  r.f.Money(totals.Subtotal),
		TaxLabel:  format.TaxLabel(inv.TaxRate),
		TaxAmount: r.f.Money(totals.TaxAmount),
		Total:     r.f.Money(totals.Total),
	}
	if st.Badge {
		v.Badge = inv.Issuer.Name
		if v.Badge == "" {
			v.Badge = "Your Company"
		}
	}
	for _, li := range inv.Items {
		v.Items = append(v.Items, itemView{
			Description: li.Description,
			Quantity:    format.Number(li.Quantity),
			Rate:        r.f.Money(li.Rate),
			Amount:      r.f.Money(li.Amount()),
		})
	}
	return v
}

func party(p invoice.Party) partyView {
	return partyView{Name: p.Name, Email: p.Email, Lines: p.AddressLines()}
}
