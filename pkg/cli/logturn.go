package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/usecase/brain"
	"github.com/thebardchat/angel-cloud/pkg/usecase/journal"
	"github.com/urfave/cli/v3"
)

func logCommand() *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Record and inspect conversation turns",
		Commands: []*cli.Command{
			logAddCommand(),
			logListCommand(),
		},
	}
}

func logAddCommand() *cli.Command {
	var (
		cfg     config
		role    string
		mode    string
		session string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "role",
			Usage:       "Turn author (user or assistant)",
			Value:       string(model.RoleUser),
			Destination: &role,
		},
		&cli.StringFlag{
			Name:        "mode",
			Usage:       "Persona the turn belongs to",
			Value:       string(model.DefaultMode),
			Sources:     cli.EnvVars("ANGEL_MODE"),
			Destination: &mode,
		},
		&cli.StringFlag{
			Name:        "session",
			Usage:       "Session to append to; omitted starts a new one",
			Sources:     cli.EnvVars("ANGEL_SESSION"),
			Destination: &session,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "add",
		Usage:     "Append one turn to the conversation log",
		ArgsUsage: "<message>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			message := strings.Join(c.Args().Slice(), " ")
			if message == "" {
				return goerr.New("message is required")
			}

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			uc := journal.New(store)
			id, sessionID, err := uc.LogTurn(ctx, journal.TurnInput{
				Message:   message,
				Role:      model.Role(role),
				Mode:      model.Mode(mode),
				SessionID: model.SessionID(session),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to log turn")
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Recorded %s\n", id)
			fmt.Fprintf(w, "Session  %s\n", sessionID)
			return nil
		},
	}
}

func logListCommand() *cli.Command {
	var (
		cfg     config
		limit   int64
		mode    string
		session string
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of turns to list",
			Value:       20,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "mode",
			Usage:       "Only turns of one persona",
			Destination: &mode,
		},
		&cli.StringFlag{
			Name:        "session",
			Usage:       "Only turns of one session",
			Destination: &session,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List recent conversation turns, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

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
			turns, err := uc.RecentTurns(ctx, model.Mode(mode), model.SessionID(session), int(limit))
			if err != nil {
				return goerr.Wrap(err, "failed to list turns")
			}

			w := c.Root().Writer
			for _, turn := range turns {
				fmt.Fprintf(w, "%s  %-9s  %s\n",
					turn.Timestamp.Format("2006-01-02 15:04"),
					turn.Role,
					clip(turn.Message, 80),
				)
			}
			return nil
		},
	}
}
