package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/usecase/journal"
	"github.com/urfave/cli/v3"
)

func crisisCommand() *cli.Command {
	return &cli.Command{
		Name:  "crisis",
		Usage: "Inspect and export the crisis log",
		Commands: []*cli.Command{
			crisisListCommand(),
			crisisStatsCommand(),
			crisisExportCommand(),
		},
	}
}

func crisisListCommand() *cli.Command {
	var (
		cfg      config
		limit    int64
		severity string
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of events to list",
			Value:       20,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "severity",
			Usage:       "Only events of one severity (low, medium, high, critical)",
			Destination: &severity,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List recent crisis events, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			uc := journal.New(store)
			events, err := uc.ListCrisis(ctx, model.Severity(severity), int(limit))
			if err != nil {
				return goerr.Wrap(err, "failed to list crisis events")
			}

			w := c.Root().Writer
			for _, event := range events {
				fmt.Fprintf(w, "%s  %-8s  %s\n",
					event.Timestamp.Format("2006-01-02 15:04"),
					event.Severity,
					clip(event.InputText, 80),
				)
			}
			return nil
		},
	}
}

func crisisStatsCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)

	return &cli.Command{
		Name:  "stats",
		Usage: "Show crisis event totals per severity",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			uc := journal.New(store)
			stats, err := uc.CrisisStats(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to aggregate crisis events")
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Total: %d\n", stats.Total)

			severities := make([]string, 0, len(stats.BySeverity))
			for s := range stats.BySeverity {
				severities = append(severities, s)
			}
			sort.Strings(severities)
			for _, s := range severities {
				fmt.Fprintf(w, "  %-8s %d\n", s, stats.BySeverity[s])
			}
			return nil
		},
	}
}

func crisisExportCommand() *cli.Command {
	var (
		cfg   config
		out   string
		limit int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "Export file name under the archive directory",
			Value:       "crisis-export.json",
			Destination: &out,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of events to export",
			Value:       1000,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, archiveFlags(&cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Write recent crisis events to a JSON file in the archive",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			uc := journal.New(store, journal.WithArchive(cfg.newArchive()))
			n, err := uc.ExportCrisis(ctx, out, int(limit))
			if err != nil {
				return goerr.Wrap(err, "failed to export crisis events")
			}

			fmt.Fprintf(c.Root().Writer, "Exported %d events to %s/%s\n", n, cfg.archiveDir, out)
			return nil
		},
	}
}
