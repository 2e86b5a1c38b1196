package main

import (
	"context"
	"os"

	"github.com/thebardchat/angel-cloud/pkg/cli"
	"github.com/thebardchat/angel-cloud/pkg/utils/logging"
)

func main() {
	ctx := context.Background()
	if err := cli.Run(ctx, os.Args); err != nil {
		logging.Default().Error("command failed", "error", err.Message)
		os.Exit(err.Code)
	}
}
