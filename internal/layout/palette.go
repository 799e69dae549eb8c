package layout

import "github.com/xenking/invoicepro/internal/domain/invoice"

var (
	white = Color{255, 255, 255}
	rule  = Color{229, 231, 235}
)

type palette struct {
	// Band draws the title on a filled accent band.
	Band       bool
	Accent     Color
	AccentDark Color
	Text       Color
	Muted      Color
	// Stripe fills every other item row when set.
	Stripe *Color
	Title  string
	Footer string
	Note   string
}

var palettes = map[invoice.Theme]palette{
	invoice.ThemeModern: {
		Band:       true,
		Accent:     Color{59, 130, 246},
		AccentDark: Color{30, 64, 175},
		Text:       Color{0, 0, 0},
		Muted:      Color{128, 128, 128},
		Title:      "INVOICE",
		Footer:     "Thank you for your business!",
		Note:       "Payment is due within 30 days. Please include invoice number in your payment reference.",
	},
	invoice.ThemeElegant: {
		Band:       true,
		Accent:     Color{139, 92, 246},
		AccentDark: Color{124, 58, 237},
		Text:       Color{31, 41, 55},
		Muted:      Color{107, 114, 128},
		Stripe:     &Color{245, 243, 255},
		Title:      "INVOICE",
		Footer:     "Thank you for choosing our services!",
		Note:       "We appreciate your business and look forward to working with you again.",
	},
	invoice.ThemeMinimal: {
		Accent:     Color{16, 185, 129},
		AccentDark: Color{16, 185, 129},
		Text:       Color{55, 65, 81},
		Muted:      Color{107, 114, 128},
		Title:      "Invoice",
		Footer:     "Thank you",
	},
}

func paletteFor(t invoice.Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[invoice.DefaultTheme]
}
