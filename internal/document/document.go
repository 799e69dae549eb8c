// Package document renders stored or unsaved invoices into HTML and PDF
// using the display preferences in effect.
package document

import (
	"bytes"
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/domain/settings"
	"github.com/xenking/invoicepro/internal/layout"
	"github.com/xenking/invoicepro/internal/render"
)

const instrumentation = "github.com/xenking/invoicepro/internal/document"

// Output formats, used as the "format" metric attribute.
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// Preferences provides the display settings applied to renderings.
type Preferences interface {
	Settings(ctx context.Context) (settings.Settings, error)
}

// Printer converts a standalone HTML document into PDF.
type Printer interface {
	Print(ctx context.Context, html string) ([]byte, error)
}

// Options configure a Service.
type Options struct {
	// Printer switches PDF output from the built-in page layout to printing
	// the HTML document.
	Printer Printer

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Service renders invoices.
type Service struct {
	prefs    Preferences
	printer  Printer
	tracer   trace.Tracer
	rendered metric.Int64Counter
	now      func() time.Time
}

// New returns a Service that reads display preferences from prefs. Nil
// providers fall back to the global ones.
func New(prefs Preferences, opts Options) (*Service, error) {
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	rendered, err := mp.Meter(instrumentation).Int64Counter("invoicepro.documents.rendered",
		metric.WithDescription("Number of rendered invoice documents"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create rendered counter")
	}
	return &Service{
		prefs:    prefs,
		printer:  opts.Printer,
		tracer:   tp.Tracer(instrumentation),
		rendered: rendered,
		now:      time.Now,
	}, nil
}

// PDF is a rendered PDF file.
type PDF struct {
	Name  string
	Data  []byte
	Pages int
}

// Fragment renders the embeddable markup of inv in theme.
func (s *Service) Fragment(ctx context.Context, inv *invoice.Invoice, theme invoice.Theme) (string, error) {
	return s.html(ctx, "Fragment", inv, theme, (*render.Renderer).Fragment)
}

// Document renders inv in theme as a standalone HTML page.
func (s *Service) Document(ctx context.Context, inv *invoice.Invoice, theme invoice.Theme) (string, error) {
	return s.html(ctx, "Document", inv, theme, (*render.Renderer).Document)
}

// Preview renders the sample invoice in theme.
func (s *Service) Preview(ctx context.Context, theme invoice.Theme) (string, error) {
	sample := render.Sample(s.now())
	return s.Fragment(ctx, &sample, theme)
}

func (s *Service) html(
	ctx context.Context,
	op string,
	inv *invoice.Invoice,
	theme invoice.Theme,
	fn func(*render.Renderer, *invoice.Invoice, invoice.Theme) (string, error),
) (_ string, rerr error) {
	theme = invoice.ParseTheme(string(theme))
	ctx, span := s.start(ctx, op, inv, attribute.String("document.theme", string(theme)))
	defer func() { s.finish(ctx, span, FormatHTML, theme, rerr) }()

	prefs, err := s.prefs.Settings(ctx)
	if err != nil {
		return "", errors.Wrap(err, "load settings")
	}
	r := render.New(render.Options{Currency: prefs.Currency, DateLayout: prefs.DateLayout()})
	out, err := fn(r, inv, theme)
	if err != nil {
		return "", err
	}
	return out, nil
}

// PDF renders inv as a PDF in its own theme. The built-in layout engine is
// used unless a Printer was configured.
func (s *Service) PDF(ctx context.Context, inv *invoice.Invoice) (_ PDF, rerr error) {
	theme := invoice.ParseTheme(string(inv.Template))
	ctx, span := s.start(ctx, "PDF", inv, attribute.Bool("document.printed", s.printer != nil))
	defer func() { s.finish(ctx, span, FormatPDF, theme, rerr) }()

	prefs, err := s.prefs.Settings(ctx)
	if err != nil {
		return PDF{}, errors.Wrap(err, "load settings")
	}
	out := PDF{Name: layout.FileName(inv)}

	if s.printer != nil {
		r := render.New(render.Options{Currency: prefs.Currency, DateLayout: prefs.DateLayout()})
		html, err := r.Document(inv, theme)
		if err != nil {
			return PDF{}, err
		}
		data, err := s.printer.Print(ctx, html)
		if err != nil {
			return PDF{}, errors.Wrap(err, "print html")
		}
		out.Data = data
		return out, nil
	}

	pages := layout.New(layout.Options{
		Currency:   prefs.Currency,
		DateLayout: prefs.DateLayout(),
	}).Layout(inv)
	var buf bytes.Buffer
	if err := layout.WritePDF(&buf, pages); err != nil {
		return PDF{}, err
	}
	out.Data = buf.Bytes()
	out.Pages = len(pages)
	span.SetAttributes(attribute.Int("document.pages", out.Pages))
	return out, nil
}

func (s *Service) start(ctx context.Context, op string, inv *invoice.Invoice, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("invoice.number", inv.Number),
		attribute.Int("invoice.items", len(inv.Items)),
	)
	return s.tracer.Start(ctx, "document."+op, trace.WithAttributes(attrs...))
}

func (s *Service) finish(ctx context.Context, span trace.Span, format string, theme invoice.Theme, err error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		zctx.From(ctx).Warn("Render failed", zap.String("format", format), zap.Error(err))
		return
	}
	s.rendered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("theme", string(theme)),
	))
}
