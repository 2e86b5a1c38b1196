package cli

import (
	"context"
	"fmt"

	"github.com/thebardchat/angel-cloud/pkg/repository"
	"github.com/urfave/cli/v3"
)

// statusCommand reports component health. Degraded components are printed,
// not returned as errors; the command is a monitoring surface and always
// exits zero.
func statusCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, ollamaFlags(&cfg)...)

	return &cli.Command{
		Name:  "status",
		Usage: "Show store and generation backend health",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)
			w := c.Root().Writer

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			if store.Ready(ctx) {
				fmt.Fprintf(w, "Store:  up (%s)\n", cfg.storeAddr)
				collections := []string{
					repository.CollectionKnowledge,
					repository.CollectionMemory,
					repository.CollectionConversation,
					repository.CollectionCrisis,
				}
				for _, collection := range collections {
					n, err := store.Count(ctx, collection, nil)
					if err != nil {
						fmt.Fprintf(w, "  %-16s unavailable\n", collection)
						continue
					}
					fmt.Fprintf(w, "  %-16s %d objects\n", collection, n)
				}
			} else {
				fmt.Fprintf(w, "Store:  down (%s)\n", cfg.storeAddr)
			}

			gen := cfg.newGenerator()
			if gen.Available(ctx) {
				fmt.Fprintf(w, "Ollama: up (%s)\n", cfg.ollamaAddr)
				models, err := gen.Models(ctx)
				if err == nil {
					for _, m := range models {
						fmt.Fprintf(w, "  %s\n", m)
					}
				}
			} else {
				fmt.Fprintf(w, "Ollama: down (%s)\n", cfg.ollamaAddr)
			}

			return nil
		},
	}
}
