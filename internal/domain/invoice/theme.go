package invoice

import "strings"

// Theme identifies one of the visual variants an invoice can be rendered
// with. The set is closed; see ParseTheme.
type Theme string

const (
	ThemeModern  Theme = "modern"
	ThemeElegant Theme = "elegant"
	ThemeMinimal Theme = "minimal"
)

// DefaultTheme is used whenever a theme id is empty or unknown.
const DefaultTheme = ThemeModern

// ParseTheme maps a template id to a Theme. "classic" is the legacy name of
// the elegant variant. Anything unrecognized falls back to DefaultTheme.
func ParseTheme(id string) Theme {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "modern":
		return ThemeModern
	case "elegant", "classic":
		return ThemeElegant
	case "minimal":
		return ThemeMinimal
	default:
		return DefaultTheme
	}
}

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeModern, ThemeElegant, ThemeMinimal:
		return true
	}
	return false
}

// ThemeInfo describes a theme for template pickers.
type ThemeInfo struct {
	ID          Theme  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Themes lists the available themes in display order.
func Themes() []ThemeInfo {
	return []ThemeInfo{
		{
			ID:          ThemeModern,
			Name:        "Modern Blue",
			Description: "Clean and professional design with blue gradient accents and modern styling",
			Color:       "#3b82f6",
		},
		{
			ID:          ThemeElegant,
			Name:        "Elegant Purple",
			Description: "Sophisticated design with purple gradients and elegant card-based layout",
			Color:       "#8b5cf6",
		},
		{
			ID:          ThemeMinimal,
			Name:        "Minimal Green",
			Description: "Simple and clean design focusing on clarity with green accent colors",
			Color:       "#10b981",
		},
	}
}
