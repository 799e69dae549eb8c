package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/invoicepro/internal/backup"
	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/format"
	"github.com/xenking/invoicepro/internal/store"
)

func (s *session) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "list",
			Usage: "list invoices",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "status", Usage: "paid or pending"},
				&cli.StringFlag{Name: "from", Usage: "first issue date, YYYY-MM-DD"},
				&cli.StringFlag{Name: "to", Usage: "last issue date, YYYY-MM-DD"},
				&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "text search"},
			},
			Action: s.list,
		},
		{
			Name:      "search",
			Usage:     "search invoices by number, client or company",
			ArgsUsage: "<query>",
			Action:    s.search,
		},
		{
			Name:      "show",
			Usage:     "print an invoice as JSON",
			ArgsUsage: "<id>",
			Action:    s.show,
		},
		{
			Name:      "save",
			Usage:     "create or update an invoice from a JSON file",
			ArgsUsage: "<file|->",
			Action:    s.save,
		},
		{
			Name:      "toggle",
			Usage:     "flip an invoice between paid and pending",
			ArgsUsage: "<id>",
			Action:    s.toggle,
		},
		{
			Name:      "duplicate",
			Usage:     "save a copy of an invoice under the next number",
			ArgsUsage: "<id>",
			Action:    s.duplicate,
		},
		{
			Name:      "delete",
			Usage:     "delete an invoice",
			ArgsUsage: "<id>",
			Action:    s.delete,
		},
		{
			Name:   "stats",
			Usage:  "print collection statistics",
			Action: s.stats,
		},
		{
			Name:  "export",
			Usage: "write all data as a JSON snapshot",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, stdout when empty"},
				&cli.BoolFlag{Name: "gzip", Usage: "compress the snapshot"},
				&cli.BoolFlag{Name: "backup", Usage: "write the timestamped backup document"},
			},
			Action: s.export,
		},
		{
			Name:      "import",
			Usage:     "replace data from a JSON or gzip snapshot",
			ArgsUsage: "<file|->",
			Action:    s.importData,
		},
		{
			Name:      "render-html",
			Usage:     "render an invoice as HTML",
			ArgsUsage: "<id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "theme", Usage: "override the invoice theme"},
				&cli.BoolFlag{Name: "fragment", Usage: "render the embeddable fragment only"},
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, stdout when empty"},
			},
			Action: s.renderHTML,
		},
		{
			Name:      "render-pdf",
			Usage:     "render an invoice as PDF",
			ArgsUsage: "<id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, Invoice-<number>.pdf when empty"},
				&cli.StringFlag{Name: "theme", Usage: "override the invoice theme"},
			},
			Action: s.renderPDF,
		},
		{
			Name:  "render-all",
			Usage: "render every invoice as PDF into a directory",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "dir", Value: "pdf", Usage: "output directory"},
				&cli.IntFlag{Name: "concurrency", Value: 4, Usage: "documents rendered at once"},
			},
			Action: s.renderAll,
		},
		seedCommand(s),
	}
}

func requireArg(c *cli.Context, name string) (string, error) {
	arg := strings.TrimSpace(c.Args().First())
	if arg == "" {
		return "", errors.Errorf("missing %s argument", name)
	}
	return arg, nil
}

func (s *session) formatter(c *cli.Context) (format.Formatter, error) {
	prefs, err := s.store.Settings(s.ctx(c))
	if err != nil {
		return format.Formatter{}, errors.Wrap(err, "load settings")
	}
	return format.Formatter{Currency: prefs.Currency, DateLayout: prefs.DateLayout()}, nil
}

func (s *session) list(c *cli.Context) error {
	q := store.Query{Text: c.String("query")}
	switch status := c.String("status"); status {
	case "", "all":
	case string(invoice.StatusPaid), string(invoice.StatusPending):
		q.Status = invoice.Status(status)
	default:
		return errors.Errorf("unknown status %q", status)
	}
	for _, d := range []struct {
		flag string
		dst  *invoice.Date
	}{
		{"from", &q.From},
		{"to", &q.To},
	} {
		v := c.String(d.flag)
		if v == "" {
			continue
		}
		parsed, err := invoice.ParseDate(v)
		if err != nil {
			return errors.Wrapf(err, "parse --%s", d.flag)
		}
		*d.dst = parsed
	}

	all, err := s.store.Find(s.ctx(c), q)
	if err != nil {
		return err
	}
	return s.printTable(c, all)
}

func (s *session) search(c *cli.Context) error {
	query, err := requireArg(c, "query")
	if err != nil {
		return err
	}
	all, err := s.store.Search(s.ctx(c), query)
	if err != nil {
		return err
	}
	return s.printTable(c, all)
}

func (s *session) printTable(c *cli.Context, all []invoice.Invoice) error {
	f, err := s.formatter(c)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tCLIENT\tISSUED\tDUE\tSTATUS\tTOTAL")
	for i := range all {
		inv := &all[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID,
			inv.Number,
			inv.Recipient.Name,
			f.Date(inv.IssueDate),
			f.Date(inv.DueDate),
			inv.Status,
			f.Money(inv.Totals().Total),
		)
	}
	return tw.Flush()
}

func (s *session) show(c *cli.Context) error {
	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	inv, err := s.store.Get(s.ctx(c), id)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, inv)
}

func (s *session) save(c *cli.Context) error {
	path, err := requireArg(c, "file")
	if err != nil {
		return err
	}
	data, err := readInput(c, path)
	if err != nil {
		return err
	}
	var inv invoice.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return errors.Wrap(err, "decode invoice")
	}
	saved, err := s.store.Save(s.ctx(c), inv)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, saved)
}

func (s *session) toggle(c *cli.Context) error {
	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	inv, err := s.store.ToggleStatus(s.ctx(c), id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "%s %s\n", inv.Number, inv.Status)
	return err
}

func (s *session) duplicate(c *cli.Context) error {
	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	ctx := s.ctx(c)
	dup, err := s.store.Duplicate(ctx, id)
	if err != nil {
		return err
	}
	inv, err := s.store.Save(ctx, dup)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "%s %s\n", inv.ID, inv.Number)
	return err
}

func (s *session) delete(c *cli.Context) error {
	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	return s.store.Delete(s.ctx(c), id)
}

func (s *session) stats(c *cli.Context) error {
	st, err := s.store.Stats(s.ctx(c))
	if err != nil {
		return err
	}
	f, err := s.formatter(c)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Invoices\t%d\n", st.Total)
	fmt.Fprintf(tw, "Total amount\t%s\n", f.Money(st.TotalAmount))
	fmt.Fprintf(tw, "This month\t%d\n", st.ThisMonth)
	fmt.Fprintf(tw, "Paid\t%d\n", st.Paid)
	fmt.Fprintf(tw, "Pending\t%d\n", st.Pending)
	fmt.Fprintf(tw, "Overdue\t%d\n", st.Overdue)
	return tw.Flush()
}

func (s *session) export(c *cli.Context) error {
	ctx := s.ctx(c)
	now := time.Now()

	var v any
	if c.Bool("backup") {
		doc, err := backup.Backup(ctx, s.store, now)
		if err != nil {
			return err
		}
		v = doc
	} else {
		snap, err := backup.Export(ctx, s.store, now)
		if err != nil {
			return err
		}
		v = snap
	}

	w, done, err := openOutput(c, c.String("out"))
	if err != nil {
		return err
	}
	if c.Bool("gzip") {
		err = backup.WriteArchive(w, v)
	} else {
		var data []byte
		data, err = backup.Marshal(v)
		if err == nil {
			_, err = w.Write(data)
		}
	}
	return done(err)
}

func (s *session) importData(c *cli.Context) error {
	path, err := requireArg(c, "file")
	if err != nil {
		return err
	}
	data, err := readInput(c, path)
	if err != nil {
		return err
	}
	res, err := backup.Import(s.ctx(c), s.store, data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "imported %d invoices (settings: %t, company info: %t)\n",
		res.Invoices, res.Settings, res.CompanyInfo)
	return err
}

func (s *session) renderHTML(c *cli.Context) error {
	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	ctx := s.ctx(c)
	inv, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	theme := inv.Template
	if t := c.String("theme"); t != "" {
		theme = invoice.Theme(t)
	}

	render := s.docs.Document
	if c.Bool("fragment") {
		render = s.docs.Fragment
	}
	html, err := render(ctx, &inv, theme)
	if err != nil {
		return err
	}

	w, done, err := openOutput(c, c.String("out"))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, html)
	return done(err)
}

func (s *session) renderPDF(c *cli.Context) error {
	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	ctx := s.ctx(c)
	inv, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if t := c.String("theme"); t != "" {
		inv.Template = invoice.Theme(t)
	}
	pdf, err := s.docs.PDF(ctx, &inv)
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		out = safeName(pdf.Name)
	}
	if err := os.WriteFile(out, pdf.Data, 0o644); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	_, err = fmt.Fprintln(c.App.Writer, out)
	return err
}

func (s *session) renderAll(c *cli.Context) error {
	ctx := s.ctx(c)
	dir := c.String("dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	// Numbers are not unique, so repeated names get the invoice id appended.
	names := make([]string, len(all))
	seen := make(map[string]int, len(all))
	for i := range all {
		seen[fileNameOf(&all[i])]++
	}
	for i := range all {
		name := fileNameOf(&all[i])
		if seen[name] > 1 {
			name = strings.TrimSuffix(name, ".pdf") + "-" + all[i].ID + ".pdf"
		}
		names[i] = filepath.Join(dir, name)
	}

	concurrency := c.Int("concurrency")
	if concurrency < 1 {
		concurrency = 1
	}
	var (
		mu      sync.Mutex
		written int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range all {
		inv := &all[i]
		path := names[i]
		g.Go(func() error {
			pdf, err := s.docs.PDF(gctx, inv)
			if err != nil {
				return errors.Wrapf(err, "render %s", inv.ID)
			}
			if err := os.WriteFile(path, pdf.Data, 0o644); err != nil {
				return errors.Wrapf(err, "write %s", path)
			}
			zctx.From(gctx).Debug("Rendered invoice",
				zap.String("id", inv.ID),
				zap.String("path", path),
			)
			mu.Lock()
			written++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "rendered %d invoices into %s\n", written, dir)
	return err
}

func fileNameOf(inv *invoice.Invoice) string {
	number := inv.Number
	if number == "" {
		number = "Draft"
	}
	return safeName("Invoice-" + number + ".pdf")
}

// safeName strips path separators from a generated file name.
func safeName(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}

func readInput(c *cli.Context, path string) ([]byte, error) {
	if path == "-" {
		r := c.App.Reader
		if r == nil {
			r = os.Stdin
		}
		data, err := io.ReadAll(r)
		return data, errors.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	return data, nil
}

// openOutput returns the writer for path, or the app writer when path is
// empty. done must be called with the write error; it closes the file.
func openOutput(c *cli.Context, path string) (io.Writer, func(error) error, error) {
	if path == "" {
		return c.App.Writer, func(err error) error { return err }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create output")
	}
	return f, func(err error) error {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close output")
		}
		return err
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
