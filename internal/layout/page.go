package layout

// Align is the horizontal anchor of a text element relative to its X.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Color is an RGB color.
type Color struct {
	R, G, B uint8
}

// FontStyle selects the font face.
type FontStyle string

const (
	Regular FontStyle = ""
	Bold    FontStyle = "B"
	Italic  FontStyle = "I"
)

// Element is one drawing primitive positioned in millimetres from the top
// left corner of the page.
type Element interface {
	element()
}

// Text draws Value with its baseline at Y.
type Text struct {
	X, Y  float64
	Value string
	Align Align
	Style FontStyle
	Size  float64
	Color Color
}

// Rect draws a rectangle, filled when Fill is set and outlined when Stroke
// is set.
type Rect struct {
	X, Y, W, H float64
	Fill       *Color
	Stroke     *Color
}

// Line draws a straight segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Color          Color
}

func (Text) element() {}
func (Rect) element() {}
func (Line) element() {}

// Page is one laid-out page.
type Page struct {
	Number   int
	Width    float64
	Height   float64
	Elements []Element
}

// Texts returns the text elements of the page in drawing order.
func (p Page) Texts() []Text {
	var out []Text
	for _, e := range p.Elements {
		if t, ok := e.(Text); ok {
			out = append(out, t)
		}
	}
	return out
}

func (p *Page) add(e ...Element) {
	p.Elements = append(p.Elements, e...)
}
