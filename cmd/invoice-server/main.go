// Command invoice-server serves the invoice HTTP API.
//
// Configuration comes from INVOICEPRO_* environment variables or
// config.yaml; see internal/app.Config.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/xenking/invoicepro/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadConfig()
		if err != nil {
			return err
		}
		lg.Debug("Loaded config",
			zap.String("storage", cfg.Storage.Driver),
			zap.String("pdf_engine", cfg.PDF.Engine),
		)
		return appkg.Run(ctx, lg, m, cfg)
	})
}
