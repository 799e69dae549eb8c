// Package settings holds user preferences and the issuer's company details.
package settings

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/invoicepro/internal/domain/invoice"
)

// Supported date display formats.
const (
	DateFormatUS  = "MM/DD/YYYY"
	DateFormatEU  = "DD/MM/YYYY"
	DateFormatISO = "YYYY-MM-DD"
)

// Settings are the user preferences applied to new invoices and renderings.
type Settings struct {
	DefaultTemplate invoice.Theme
	DefaultTaxRate  decimal.Decimal
	Currency        string
	DateFormat      string
	// Theme is the UI color scheme. It is persisted for clients and has no
	// effect on rendering.
	Theme string
}

// Defaults returns the preferences used before anything was saved.
func Defaults() Settings {
	return Settings{
		DefaultTemplate: invoice.ThemeModern,
		DefaultTaxRate:  decimal.Zero,
		Currency:        "USD",
		DateFormat:      DateFormatUS,
		Theme:           "dark",
	}
}

type settingsJSON struct {
	DefaultTemplate *string          `json:"defaultTemplate,omitempty"`
	DefaultTaxRate  *json.RawMessage `json:"defaultTaxRate,omitempty"`
	Currency        *string          `json:"currency,omitempty"`
	DateFormat      *string          `json:"dateFormat,omitempty"`
	Theme           *string          `json:"theme,omitempty"`
}

func (s Settings) MarshalJSON() ([]byte, error) {
	template := string(s.DefaultTemplate)
	rate := json.RawMessage(s.DefaultTaxRate.String())
	return json.Marshal(settingsJSON{
		DefaultTemplate: &template,
		DefaultTaxRate:  &rate,
		Currency:        &s.Currency,
		DateFormat:      &s.DateFormat,
		Theme:           &s.Theme,
	})
}

// UnmarshalJSON overlays the fields present in data onto s. Decoding into
// Defaults() therefore yields stored values merged over the defaults.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var w settingsJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "settings")
	}
	if w.DefaultTemplate != nil {
		s.DefaultTemplate = invoice.ParseTheme(*w.DefaultTemplate)
	}
	if w.DefaultTaxRate != nil {
		rate, err := invoice.ParseNumber(string(*w.DefaultTaxRate))
		if err != nil {
			return errors.Wrap(err, "defaultTaxRate")
		}
		s.DefaultTaxRate = rate
	}
	if w.Currency != nil && *w.Currency != "" {
		s.Currency = *w.Currency
	}
	if w.DateFormat != nil && *w.DateFormat != "" {
		s.DateFormat = *w.DateFormat
	}
	if w.Theme != nil {
		s.Theme = *w.Theme
	}
	return nil
}

// Merge returns s with the fields present in the JSON patch applied.
func (s Settings) Merge(patch []byte) (Settings, error) {
	out := s
	if err := json.Unmarshal(patch, &out); err != nil {
		return s, err
	}
	return out, nil
}

// DateLayout returns the Go time layout for the configured date format.
// Unknown formats use the US layout.
func (s Settings) DateLayout() string {
	switch s.DateFormat {
	case DateFormatEU:
		return "02/01/2006"
	case DateFormatISO:
		return "2006-01-02"
	default:
		return "01/02/2006"
	}
}

// CompanyInfo is the issuer block prefilled into new invoices.
type CompanyInfo struct {
	Name    string `json:"companyName,omitempty"`
	Email   string `json:"companyEmail,omitempty"`
	Address string `json:"companyAddress,omitempty"`
	Phone   string `json:"companyPhone,omitempty"`
	Website string `json:"companyWebsite,omitempty"`
}

// Party converts the company details into an invoice issuer.
func (c CompanyInfo) Party() invoice.Party {
	return invoice.Party{
		Name:    c.Name,
		Email:   c.Email,
		Address: c.Address,
	}
}

// Draft returns a new invoice prefilled from the preferences and company
// details.
func Draft(now time.Time, s Settings, company CompanyInfo) invoice.Invoice {
	return invoice.NewDraft(now, invoice.DraftDefaults{
		Issuer:   company.Party(),
		Template: s.DefaultTemplate,
		TaxRate:  s.DefaultTaxRate,
	})
}
