package main

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/render"
)

var seedClients = []invoice.Party{
	{Name: "Globex Corporation", Email: "ap@globex.test", Address: "1 Globex Way\nCypress Creek"},
	{Name: "Initech", Email: "billing@initech.test", Address: "4120 Freidrich Lane\nAustin, TX 78744"},
	{Name: "Umbrella Health", Email: "finance@umbrella.test", Address: "545 Raccoon Street\nRaccoon City"},
	{Name: "Stark Industries", Email: "payables@stark.test", Address: "10880 Malibu Point\nMalibu, CA 90265"},
}

var seedThemes = []invoice.Theme{invoice.ThemeModern, invoice.ThemeElegant, invoice.ThemeMinimal}

func seedCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "add sample invoices for demos and manual testing",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Value: 6, Usage: "invoices to create"},
		},
		Action: s.seed,
	}
}

// seed saves count sample invoices, one per month going back from today.
// Every third invoice is marked paid.
func (s *session) seed(c *cli.Context) error {
	count := c.Int("count")
	if count < 1 {
		return errors.Errorf("count must be positive, got %d", count)
	}
	ctx := s.ctx(c)
	lg := zctx.From(ctx)

	now := time.Now()
	for i := 0; i < count; i++ {
		inv := render.Sample(now.AddDate(0, -i, 0))
		number, err := s.store.NextNumber(ctx)
		if err != nil {
			return err
		}
		inv.Number = number
		inv.Recipient = seedClients[i%len(seedClients)]
		inv.Template = seedThemes[i%len(seedThemes)]
		if i%3 == 2 {
			inv.Status = invoice.StatusPaid
		}

		saved, err := s.store.Save(ctx, inv)
		if err != nil {
			return errors.Wrapf(err, "save sample %d", i+1)
		}
		lg.Info("Seeded invoice",
			zap.String("id", saved.ID),
			zap.String("number", saved.Number),
			zap.String("client", saved.Recipient.Name),
		)
	}
	_, err := fmt.Fprintf(c.App.Writer, "seeded %d invoices\n", count)
	return err
}
