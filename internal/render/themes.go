package render

import (
	"html/template"

	"github.com/xenking/invoicepro/internal/domain/invoice"
)

// style is the presentation of one theme. Content is identical across
// themes; only this differs.
type style struct {
	Title  string
	Badge  bool
	Labels bool
	Footer footer
	CSS    template.CSS
}

type footer struct {
	Title string
	Note  string
}

const baseCSS = `
.invoice-template { font-family: 'Inter', -apple-system, BlinkMacSystemFont, sans-serif; color: #1f2937; line-height: 1.5; }
.invoice-template .invoice-header { display: flex; justify-content: space-between; align-items: flex-start; margin-bottom: 2rem; }
.invoice-template .invoice-title { margin: 0; }
.invoice-template .invoice-details { display: grid; grid-template-columns: 1fr 1fr; gap: 2rem; margin-bottom: 2rem; }
.invoice-template .party-name { font-weight: 600; }
.invoice-template .invoice-dates { display: grid; grid-template-columns: 1fr 1fr; gap: 2rem; margin-bottom: 2rem; }
.invoice-template .info-label { font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.05em; margin-bottom: 0.25rem; }
.invoice-template .invoice-table { width: 100%; border-collapse: collapse; margin-bottom: 2rem; }
.invoice-template .invoice-table th, .invoice-template .invoice-table td { padding: 0.75rem; text-align: left; }
.invoice-template .text-center { text-align: center !important; }
.invoice-template .text-right { text-align: right !important; }
.invoice-template .invoice-totals { display: flex; justify-content: flex-end; margin-bottom: 2rem; }
.invoice-template .totals-table { min-width: 300px; border-collapse: collapse; }
.invoice-template .totals-table td { padding: 0.5rem 0.75rem; }
.invoice-template .invoice-footer { text-align: center; padding-top: 2rem; }
`

var styles = map[invoice.Theme]style{
	invoice.ThemeModern: {
		Title:  "INVOICE",
		Badge:  true,
		Labels: true,
		Footer: footer{
			Title: "Thank you for your business!",
			Note:  "Payment is due within 30 days. Please include invoice number in your payment reference.",
		},
		CSS: baseCSS + `
.modern-template .invoice-title { font-size: 2.5rem; font-weight: 800; color: #1e40af; }
.modern-template .invoice-number { color: #3b82f6; font-weight: 600; }
.modern-template .company-badge { background: linear-gradient(135deg, #3b82f6, #1e40af); color: #ffffff; padding: 1.5rem; border-radius: 12px; box-shadow: 0 8px 32px rgba(59, 130, 246, 0.3); font-size: 1.2rem; }
.modern-template .info-label { color: #3b82f6; font-weight: 600; }
.modern-template .invoice-table thead tr, .modern-template .total-row { background: linear-gradient(135deg, #3b82f6, #1e40af); color: #ffffff; }
.modern-template .invoice-table tbody tr { border-bottom: 1px solid #e5e7eb; }
.modern-template .invoice-footer { border-top: 1px solid #e5e7eb; color: #4b5563; }
.modern-template .footer-note { font-size: 0.9rem; margin-top: 1rem; }
`,
	},
	invoice.ThemeElegant: {
		Title:  "INVOICE",
		Badge:  true,
		Labels: true,
		Footer: footer{
			Title: "Thank you for choosing our services!",
			Note:  "We appreciate your business and look forward to working with you again.",
		},
		CSS: baseCSS + `
.elegant-template .invoice-title { font-size: 2.5rem; font-weight: 700; font-family: Georgia, 'Times New Roman', serif; color: #7c3aed; }
.elegant-template .invoice-number { color: #8b5cf6; font-weight: 600; }
.elegant-template .company-badge { background: linear-gradient(135deg, #8b5cf6, #7c3aed); color: #ffffff; padding: 1.5rem; border-radius: 12px; box-shadow: 0 8px 32px rgba(139, 92, 246, 0.3); font-size: 1.2rem; }
.elegant-template .invoice-details { background: linear-gradient(135deg, rgba(139, 92, 246, 0.1), rgba(124, 58, 237, 0.05)); padding: 2rem; border-radius: 12px; }
.elegant-template .info-label { color: #8b5cf6; font-weight: 600; }
.elegant-template .date-block { background: rgba(139, 92, 246, 0.05); padding: 1rem; border-radius: 8px; border-left: 4px solid #8b5cf6; }
.elegant-template .date-value { font-weight: 600; }
.elegant-template .invoice-table { border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(139, 92, 246, 0.1); }
.elegant-template .invoice-table thead tr, .elegant-template .total-row { background: linear-gradient(135deg, #8b5cf6, #7c3aed); color: #ffffff; }
.elegant-template .subtotal-row td, .elegant-template .tax-row td { background: rgba(139, 92, 246, 0.05); }
.elegant-template .invoice-footer { background: linear-gradient(135deg, rgba(139, 92, 246, 0.1), rgba(124, 58, 237, 0.05)); border-radius: 12px; padding: 2rem; }
.elegant-template .footer-title { font-size: 1.1rem; font-weight: 600; color: #8b5cf6; }
.elegant-template .footer-note { margin-top: 1rem; }
`,
	},
	invoice.ThemeMinimal: {
		Title: "Invoice",
		Footer: footer{
			Title: "Thank you",
		},
		CSS: baseCSS + `
.minimal-template .invoice-header { margin-bottom: 3rem; }
.minimal-template .invoice-title { font-size: 2rem; font-weight: 300; margin-bottom: 0.5rem; }
.minimal-template .invoice-number { color: #10b981; font-weight: 600; }
.minimal-template .invoice-details { grid-template-columns: 1fr; margin-bottom: 3rem; }
.minimal-template .company-info .party-name { color: #10b981; font-size: 1.1rem; }
.minimal-template .client-info .party-name { font-size: 1.1rem; }
.minimal-template .party-address, .minimal-template .party-email { color: #6b7280; }
.minimal-template .invoice-dates { color: #6b7280; margin-bottom: 3rem; }
.minimal-template .info-label { text-transform: none; letter-spacing: 0; font-size: 0.9rem; }
.minimal-template .date-value { font-weight: 600; color: #374151; }
.minimal-template .invoice-table th { padding: 1rem 0; font-weight: 500; color: #10b981; }
.minimal-template .invoice-table thead tr { border-bottom: 2px solid #10b981; }
.minimal-template .invoice-table td { padding: 0.75rem 0; border-bottom: 1px solid #e5e7eb; }
.minimal-template .subtotal-row, .minimal-template .tax-row { color: #6b7280; }
.minimal-template .total-row { border-top: 2px solid #10b981; font-size: 1.2rem; color: #10b981; }
.minimal-template .invoice-footer { border-top: 1px solid #e5e7eb; color: #6b7280; }
`,
	},
}

func styleFor(t invoice.Theme) (invoice.Theme, style) {
	if s, ok := styles[t]; ok {
		return t, s
	}
	return invoice.DefaultTheme, styles[invoice.DefaultTheme]
}
