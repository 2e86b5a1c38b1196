package cli

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/thebardchat/angel-cloud/pkg/service/mcp"
	"github.com/thebardchat/angel-cloud/pkg/usecase/brain"
	"github.com/thebardchat/angel-cloud/pkg/usecase/journal"
	"github.com/thebardchat/angel-cloud/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the assistant as a server",
		Commands: []*cli.Command{
			serveMCPCommand(),
		},
	}
}

// serveMCPCommand exposes the core operations over MCP stdio. Stdout
// carries the protocol; logs stay on stderr.
func serveMCPCommand() *cli.Command {
	var cfg config

	flags := safetyFlags(&cfg)
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve search, context packing, classification, and turn logging over MCP stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			turns := journal.New(store)
			classifier, err := cfg.newClassifier(turns)
			if err != nil {
				return err
			}

			server := mcp.New(brain.New(store), classifier, turns)

			logging.From(ctx).Info("starting MCP server", "store", cfg.storeAddr)
			return server.Run(ctx, &mcpsdk.StdioTransport{})
		},
	}
}
