package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/usecase/brain"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg           config
		limit         int64
		skipKnowledge bool
		skipMemory    bool
		history       bool
		category      string
		mode          string
		session       string
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of results per source",
			Value:       brain.DefaultLimit,
			Sources:     cli.EnvVars("ANGEL_SEARCH_LIMIT"),
			Destination: &limit,
		},
		&cli.BoolFlag{
			Name:        "skip-knowledge",
			Usage:       "Skip the knowledge base",
			Destination: &skipKnowledge,
		},
		&cli.BoolFlag{
			Name:        "skip-memory",
			Usage:       "Skip session memories",
			Destination: &skipMemory,
		},
		&cli.BoolFlag{
			Name:        "history",
			Usage:       "Also search conversation history",
			Destination: &history,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Restrict knowledge results to one category",
			Destination: &category,
		},
		&cli.StringFlag{
			Name:        "mode",
			Usage:       "Restrict conversation results to one persona",
			Destination: &mode,
		},
		&cli.StringFlag{
			Name:        "session",
			Usage:       "Restrict conversation results to one session",
			Destination: &session,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search knowledge, memories, and conversation history",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			query := strings.Join(c.Args().Slice(), " ")
			if query == "" {
				return goerr.New("query is required")
			}
			if mode != "" {
				if err := model.Mode(mode).Validate(); err != nil {
					return goerr.Wrap(err, "invalid mode", goerr.V("mode", mode))
				}
			}

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			uc := brain.New(store)
			rs := uc.Search(ctx, brain.SearchInput{
				Query:            query,
				Limit:            int(limit),
				SkipKnowledge:    skipKnowledge,
				SkipMemory:       skipMemory,
				SkipConversation: !history,
				Category:         category,
				Mode:             model.Mode(mode),
				SessionID:        model.SessionID(session),
			})

			w := c.Root().Writer
			if !skipKnowledge {
				fmt.Fprintf(w, "Knowledge (%d):\n", len(rs.Knowledge))
				for _, item := range rs.Knowledge {
					fmt.Fprintf(w, "  [%s] %s\n", item.Category, clip(item.Content, 96))
				}
			}
			if !skipMemory {
				fmt.Fprintf(w, "Memory (%d):\n", len(rs.Memory))
				for _, item := range rs.Memory {
					fmt.Fprintf(w, "  [%s %s] %s\n", item.SessionDate, item.Section, clip(item.Content, 96))
				}
			}
			if history {
				fmt.Fprintf(w, "Conversation (%d):\n", len(rs.Conversation))
				for _, turn := range rs.Conversation {
					fmt.Fprintf(w, "  [%s] %s\n", turn.Role, clip(turn.Message, 96))
				}
			}

			return nil
		},
	}
}
