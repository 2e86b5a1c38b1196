package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/thebardchat/angel-cloud/pkg/usecase/ingest"
	"github.com/urfave/cli/v3"
)

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Import markdown exports into the store",
		Commands: []*cli.Command{
			ingestKnowledgeCommand(),
			ingestMemoryCommand(),
		},
	}
}

func ingestKnowledgeCommand() *cli.Command {
	var (
		cfg  config
		file string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Markdown file to import, split on ## headings",
			Required:    true,
			Destination: &file,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "knowledge",
		Usage: "Import a markdown file into the knowledge base",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			uc := ingest.New(store)
			result, err := uc.ImportKnowledge(ctx, file)
			if err != nil {
				return goerr.Wrap(err, "failed to import knowledge")
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Imported %d sections (%d failed)\n", result.Imported, result.Failed)

			categories := make([]string, 0, len(result.ByCategory))
			for cat := range result.ByCategory {
				categories = append(categories, cat)
			}
			sort.Strings(categories)
			for _, cat := range categories {
				fmt.Fprintf(w, "  %-12s %d\n", cat, result.ByCategory[cat])
			}
			return nil
		},
	}
}

func ingestMemoryCommand() *cli.Command {
	var (
		cfg    config
		dir    string
		recent int64
		noSkip bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "dir",
			Aliases:     []string{"d"},
			Usage:       "Directory of Session_*.md exports",
			Required:    true,
			Destination: &dir,
		},
		&cli.IntFlag{
			Name:        "recent",
			Aliases:     []string{"n"},
			Usage:       "Only the N most recently modified files (0 imports all)",
			Destination: &recent,
		},
		&cli.BoolFlag{
			Name:        "no-skip",
			Usage:       "Insert sections even when an identical one is already stored",
			Destination: &noSkip,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "memory",
		Usage: "Import session exports into session memory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			uc := ingest.New(store, ingest.WithDedup(!noSkip))
			result, err := uc.ImportMemoryDir(ctx, dir, int(recent))
			if err != nil {
				return goerr.Wrap(err, "failed to import memories")
			}

			fmt.Fprintf(c.Root().Writer, "Files: %d  Imported: %d  Duplicates: %d  Failed: %d\n",
				result.Files, result.Imported, result.Duplicates, result.Failed)
			return nil
		},
	}
}
