package cli

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "angel-cloud",
		Usage: "Retrieval-augmented context and crisis screening for the Angel Cloud assistant",
		Commands: []*cli.Command{
			searchCommand(),
			contextCommand(),
			classifyCommand(),
			chatCommand(),
			logCommand(),
			crisisCommand(),
			ingestCommand(),
			setupCommand(),
			statusCommand(),
			serveCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

// clip flattens s to one line of at most n runes for list output
func clip(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
