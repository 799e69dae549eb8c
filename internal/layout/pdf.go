package layout

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/jung-kurt/gofpdf"
)

const fontFamily = "Helvetica"

// WritePDF draws pages with the core Helvetica font and writes the document
// to w. Text is translated to the cp1252 code page, which covers the
// supported currency symbols.
func WritePDF(w io.Writer, pages []Page) error {
	if len(pages) == 0 {
		return errors.New("no pages to write")
	}

	first := pages[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range pages {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, el := range page.Elements {
			switch el := el.(type) {
			case Text:
				drawText(pdf, tr, el)
			case Rect:
				drawRect(pdf, el)
			case Line:
				pdf.SetDrawColor(int(el.Color.R), int(el.Color.G), int(el.Color.B))
				pdf.SetLineWidth(el.Width)
				pdf.Line(el.X1, el.Y1, el.X2, el.Y2)
			}
		}
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	return nil
}

func drawText(pdf *gofpdf.Fpdf, tr func(string) string, t Text) {
	if t.Value == "" {
		return
	}
	pdf.SetFont(fontFamily, string(t.Style), t.Size)
	pdf.SetTextColor(int(t.Color.R), int(t.Color.G), int(t.Color.B))
	s := tr(t.Value)
	x := t.X
	switch t.Align {
	case AlignCenter:
		x -= pdf.GetStringWidth(s) / 2
	case AlignRight:
		x -= pdf.GetStringWidth(s)
	}
	pdf.Text(x, t.Y, s)
}

func drawRect(pdf *gofpdf.Fpdf, r Rect) {
	style := ""
	if r.Fill != nil {
		pdf.SetFillColor(int(r.Fill.R), int(r.Fill.G), int(r.Fill.B))
		style += "F"
	}
	if r.Stroke != nil {
		pdf.SetDrawColor(int(r.Stroke.R), int(r.Stroke.G), int(r.Stroke.B))
		style += "D"
	}
	if style == "" {
		return
	}
	pdf.Rect(r.X, r.Y, r.W, r.H, style)
}
