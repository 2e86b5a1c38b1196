package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/thebardchat/angel-cloud/pkg/usecase/brain"
	"github.com/thebardchat/angel-cloud/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func contextCommand() *cli.Command {
	var (
		cfg            config
		limit          int64
		budget         int64
		category       string
		includeHistory bool
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of candidates per source",
			Value:       brain.DefaultLimit,
			Destination: &limit,
		},
		&cli.IntFlag{
			Name:        "budget",
			Aliases:     []string{"b"},
			Usage:       "Context size budget in estimator units",
			Value:       brain.DefaultBudget,
			Sources:     cli.EnvVars("ANGEL_CONTEXT_BUDGET"),
			Destination: &budget,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Restrict knowledge candidates to one category",
			Destination: &category,
		},
		&cli.BoolFlag{
			Name:        "include-history",
			Usage:       "Also pack past conversation turns",
			Destination: &includeHistory,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "context",
		Usage:     "Assemble a packed context block for a query",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			query := strings.Join(c.Args().Slice(), " ")
			if query == "" {
				return goerr.New("query is required")
			}

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			uc := brain.New(store)
			rs := uc.Search(ctx, brain.SearchInput{
				Query:            query,
				Limit:            int(limit),
				Category:         category,
				SkipConversation: !includeHistory,
			})

			block := brain.Pack(rs, brain.PackOptions{
				Budget:              int(budget),
				IncludeConversation: includeHistory,
			})

			logging.From(ctx).Info("packed context",
				"chunks", block.Chunks,
				"size", block.Size,
				"truncated", block.Truncated,
			)

			w := c.Root().Writer
			if block.Text == "" {
				fmt.Fprintf(w, "No relevant context found\n")
				return nil
			}

			fmt.Fprintf(w, "%s\n", block.Text)
			return nil
		},
	}
}
