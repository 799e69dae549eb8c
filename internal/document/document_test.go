package document

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/domain/settings"
)

type fixedPrefs struct {
	s   settings.Settings
	err error
}

func (f fixedPrefs) Settings(context.Context) (settings.Settings, error) { return f.s, f.err }

type fakePrinter struct {
	html string
	err  error
}

func (p *fakePrinter) Print(_ context.Context, html string) ([]byte, error) {
	p.html = html
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-fake"), nil
}

type telemetry struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
}

func newService(t *testing.T, prefs Preferences, printer Printer) (*Service, telemetry) {
	t.Helper()
	tel := telemetry{spans: tracetest.NewSpanRecorder(), reader: sdkmetric.NewManualReader()}
	opts := Options{
		TracerProvider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(tel.spans)),
		MeterProvider:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(tel.reader)),
	}
	if printer != nil {
		opts.Printer = printer
	}
	svc, err := New(prefs, opts)
	require.NoError(t, err)
	return svc, tel
}

func (tel telemetry) rendered(t *testing.T) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, tel.reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "invoicepro.documents.rendered" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func designInvoice() invoice.Invoice {
	return invoice.Invoice{
		Number:    "INV-0042",
		IssueDate: invoice.NewDate(2025, 6, 1),
		DueDate:   invoice.NewDate(2025, 7, 1),
		Template:  invoice.ThemeMinimal,
		Issuer:    invoice.Party{Name: "Studio"},
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

func TestService_HTMLUsesPreferences(t *testing.T) {
	prefs := settings.Defaults()
	prefs.Currency = "EUR"
	prefs.DateFormat = settings.DateFormatISO
	svc, tel := newService(t, fixedPrefs{s: prefs}, nil)

	inv := designInvoice()
	out, err := svc.Document(context.Background(), &inv, invoice.ThemeElegant)
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "€1100.00")
	assert.Contains(t, out, "2025-06-01")
	assert.Contains(t, out, "elegant-template")

	frag, err := svc.Fragment(context.Background(), &inv, "unknown")
	require.NoError(t, err)
	assert.Contains(t, frag, "modern-template")
	assert.NotContains(t, frag, "<!DOCTYPE html>")

	preview, err := svc.Preview(context.Background(), invoice.ThemeMinimal)
	require.NoError(t, err)
	assert.Contains(t, preview, "INV-0001")

	assert.EqualValues(t, 3, tel.rendered(t))
	spans := tel.spans.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "document.Document", spans[0].Name())
}

func TestService_LayoutPDF(t *testing.T) {
	svc, tel := newService(t, fixedPrefs{s: settings.Defaults()}, nil)

	inv := designInvoice()
	out, err := svc.PDF(context.Background(), &inv)
	require.NoError(t, err)
	assert.Equal(t, "Invoice-INV-0042.pdf", out.Name)
	assert.Equal(t, 1, out.Pages)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("%PDF-")))
	assert.EqualValues(t, 1, tel.rendered(t))
}

func TestService_PrinterPDF(t *testing.T) {
	printer := &fakePrinter{}
	svc, _ := newService(t, fixedPrefs{s: settings.Defaults()}, printer)

	inv := designInvoice()
	out, err := svc.PDF(context.Background(), &inv)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), out.Data)
	assert.Contains(t, printer.html, "minimal-template")
	assert.Contains(t, printer.html, "$1100.00")

	printer.err = errors.New("chromium crashed")
	_, err = svc.PDF(context.Background(), &inv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chromium crashed")
}

func TestService_ErrorsAreNotCounted(t *testing.T) {
	svc, tel := newService(t, fixedPrefs{err: errors.New("storage down")}, nil)

	inv := designInvoice()
	_, err := svc.Fragment(context.Background(), &inv, invoice.ThemeModern)
	require.Error(t, err)
	_, err = svc.PDF(context.Background(), &inv)
	require.Error(t, err)

	assert.EqualValues(t, 0, tel.rendered(t))
	for _, s := range tel.spans.Ended() {
		assert.NotEmpty(t, s.Events(), "error recorded on %s", s.Name())
	}
}

func TestNew_GlobalProviders(t *testing.T) {
	svc, err := New(fixedPrefs{s: settings.Defaults()}, Options{})
	require.NoError(t, err)
	inv := designInvoice()
	_, err = svc.Fragment(context.Background(), &inv, invoice.ThemeModern)
	require.NoError(t, err)
}
