// Command invoicectl manages invoices stored by invoice-server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	appkg "github.com/xenking/invoicepro/internal/app"
	"github.com/xenking/invoicepro/internal/document"
	"github.com/xenking/invoicepro/internal/render/chromepdf"
	"github.com/xenking/invoicepro/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "invoicectl:", err)
		os.Exit(1)
	}
}

// session holds the dependencies opened for one invocation.
type session struct {
	lg      *zap.Logger
	store   *store.Store
	docs    *document.Service
	closeKV func()
}

func newApp() *cli.App {
	s := &session{}
	return &cli.App{
		Name:  "invoicectl",
		Usage: "manage, render and back up invoices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "storage",
				Usage:   "storage driver: memory, file or postgres",
				Value:   appkg.DriverFile,
				EnvVars: []string{"INVOICEPRO_STORAGE_DRIVER"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "directory of the file driver",
				Value:   "data",
				EnvVars: []string{"INVOICEPRO_STORAGE_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "PostgreSQL connection URL",
				EnvVars: []string{"INVOICEPRO_DATABASE_URL", "DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "pdf-engine",
				Usage:   "PDF engine: layout or chrome",
				Value:   appkg.EngineLayout,
				EnvVars: []string{"INVOICEPRO_PDF_ENGINE"},
			},
			&cli.StringFlag{
				Name:    "chromium-path",
				Usage:   "Chromium binary for the chrome engine",
				EnvVars: []string{"INVOICEPRO_PDF_CHROMIUM_PATH"},
			},
			&cli.DurationFlag{
				Name:  "pdf-timeout",
				Usage: "per-document timeout of the chrome engine",
				Value: chromepdf.DefaultTimeout,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log at debug level",
			},
		},
		Before:   s.open,
		After:    s.close,
		Commands: s.commands(),
	}
}

func (s *session) open(c *cli.Context) error {
	logCfg := zap.NewDevelopmentConfig()
	if !c.Bool("verbose") {
		logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	lg, err := logCfg.Build()
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	s.lg = lg

	cfg := &appkg.Config{
		DatabaseURL: c.String("database-url"),
		Storage: appkg.StorageConfig{
			Driver:  c.String("storage"),
			DataDir: c.String("data-dir"),
		},
		PDF: appkg.PDFConfig{
			Engine:       c.String("pdf-engine"),
			ChromiumPath: c.String("chromium-path"),
			Timeout:      c.Duration("pdf-timeout"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	kv, closeKV, err := appkg.OpenKV(s.ctx(c), lg, cfg)
	if err != nil {
		return err
	}
	s.closeKV = closeKV
	s.store = store.New(kv)

	docs, err := document.New(s.store, document.Options{Printer: appkg.NewPrinter(cfg.PDF)})
	if err != nil {
		return errors.Wrap(err, "create document service")
	}
	s.docs = docs
	return nil
}

func (s *session) close(*cli.Context) error {
	if s.closeKV != nil {
		s.closeKV()
	}
	if s.lg != nil {
		_ = s.lg.Sync()
	}
	return nil
}

// ctx returns the command context carrying the session logger.
func (s *session) ctx(c *cli.Context) context.Context {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if s.lg == nil {
		return ctx
	}
	return zctx.Base(ctx, s.lg)
}
