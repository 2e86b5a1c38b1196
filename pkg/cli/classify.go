package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/thebardchat/angel-cloud/pkg/usecase/journal"
	"github.com/urfave/cli/v3"
)

func classifyCommand() *cli.Command {
	var cfg config

	flags := safetyFlags(&cfg)
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "classify",
		Usage:     "Screen text for crisis indicators and sentiment",
		ArgsUsage: "<text>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			text := strings.Join(c.Args().Slice(), " ")
			if text == "" {
				return goerr.New("text is required")
			}

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			classifier, err := cfg.newClassifier(journal.New(store))
			if err != nil {
				return err
			}

			result := classifier.Classify(ctx, text)

			w := c.Root().Writer
			fmt.Fprintf(w, "sentiment: %+.2f\n", result.SentimentScore)
			fmt.Fprintf(w, "crisis:    %t\n", result.Crisis)
			fmt.Fprintf(w, "urgency:   %s\n", result.Urgency)
			return nil
		},
	}
}
