package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func setupCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)

	return &cli.Command{
		Name:  "setup",
		Usage: "Create missing store collections (safe to rerun)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			if err := store.EnsureSchema(ctx); err != nil {
				return goerr.Wrap(err, "failed to set up store schema")
			}

			fmt.Fprintf(c.Root().Writer, "Store schema is ready\n")
			return nil
		},
	}
}
