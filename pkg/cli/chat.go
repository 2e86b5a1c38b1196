package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/usecase/brain"
	"github.com/thebardchat/angel-cloud/pkg/usecase/chat"
	"github.com/thebardchat/angel-cloud/pkg/usecase/journal"
	"github.com/urfave/cli/v3"
)

// crisisNotice is shown under a reply whenever the screen flags the
// user's message. The model also receives crisis guidance in its prompt;
// the notice makes sure the number is visible even if the reply omits it.
const crisisNotice = "If you are in crisis, call or text 988 (Suicide and Crisis Lifeline)."

func chatCommand() *cli.Command {
	var (
		cfg            config
		message        string
		mode           string
		session        string
		budget         int64
		includeHistory bool
		saveTranscript bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "message",
			Aliases:     []string{"m"},
			Usage:       "Send one message and exit instead of starting a session",
			Destination: &message,
		},
		&cli.StringFlag{
			Name:        "mode",
			Usage:       "Persona to talk with (logibot, shanebrain, angel)",
			Value:       string(model.DefaultMode),
			Sources:     cli.EnvVars("ANGEL_MODE"),
			Destination: &mode,
		},
		&cli.StringFlag{
			Name:        "session",
			Usage:       "Session ID to continue; omitted starts a new one",
			Sources:     cli.EnvVars("ANGEL_SESSION"),
			Destination: &session,
		},
		&cli.IntFlag{
			Name:        "budget",
			Usage:       "Context size budget in estimator units",
			Value:       brain.DefaultBudget,
			Sources:     cli.EnvVars("ANGEL_CONTEXT_BUDGET"),
			Destination: &budget,
		},
		&cli.BoolFlag{
			Name:        "include-history",
			Usage:       "Pack past conversation turns into the context",
			Destination: &includeHistory,
		},
		&cli.BoolFlag{
			Name:        "save-transcript",
			Usage:       "Save the session transcript to the archive on exit",
			Destination: &saveTranscript,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, ollamaFlags(&cfg)...)
	flags = append(flags, safetyFlags(&cfg)...)
	flags = append(flags, archiveFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Talk with the assistant",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			if err := model.Mode(mode).Validate(); err != nil {
				return goerr.Wrap(err, "invalid mode", goerr.V("mode", mode))
			}

			store, err := cfg.newStore()
			if err != nil {
				return err
			}

			turns := journal.New(store)
			classifier, err := cfg.newClassifier(turns)
			if err != nil {
				return err
			}

			uc := chat.New(
				brain.New(store),
				cfg.newGenerator(),
				classifier,
				turns,
				chat.WithOutput(c.Root().Writer),
				chat.WithBudget(int(budget)),
				chat.WithIncludeHistory(includeHistory),
				chat.WithArchive(cfg.newArchive()),
			)

			// One-shot: stream the reply straight to stdout
			if message != "" {
				out, err := uc.Respond(ctx, chat.Input{
					Message:   message,
					Mode:      model.Mode(mode),
					SessionID: model.SessionID(session),
					Stream:    true,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(c.Root().Writer, "\n")
				if out.Classification.Crisis {
					fmt.Fprintf(c.Root().Writer, "\n%s\n", crisisNotice)
				}
				return nil
			}

			state := &replState{
				mode:    model.Mode(mode),
				session: model.SessionID(session),
			}
			return runREPL(ctx, c.Root().Writer, uc, state, saveTranscript)
		},
	}
}

// replState carries the mutable session settings across REPL turns.
// Turns are accumulated locally so /save can write a transcript without
// another store round-trip.
type replState struct {
	mode    model.Mode
	session model.SessionID
	turns   []model.ConversationTurn
}

func runREPL(ctx context.Context, w io.Writer, uc *chat.UseCase, state *replState, saveOnExit bool) error {
	rl, err := readline.New(prompt(state.mode))
	if err != nil {
		return goerr.Wrap(err, "failed to open terminal")
	}
	defer rl.Close()

	fmt.Fprintf(w, "Chatting with %s. Type /quit to leave; /mode, /session, and /save are available.\n", state.mode)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to read input")
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			break
		}

		if strings.HasPrefix(line, "/") {
			if quit := handleSlash(ctx, w, uc, state, line); quit {
				break
			}
			rl.SetPrompt(prompt(state.mode))
			continue
		}

		if err := send(ctx, w, uc, state, line); err != nil {
			fmt.Fprintf(w, "Error: %s\n", err)
		}
	}

	if saveOnExit {
		writeTranscript(ctx, w, uc, state)
	}

	fmt.Fprintf(w, "Take care.\n")
	return nil
}

func prompt(mode model.Mode) string {
	return string(mode) + "> "
}

// send runs one exchange. The spinner writes to stderr so a piped stdout
// only carries replies.
func send(ctx context.Context, w io.Writer, uc *chat.UseCase, state *replState, message string) error {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = " thinking..."
	sp.Start()

	out, err := uc.Respond(ctx, chat.Input{
		Message:   message,
		Mode:      state.mode,
		SessionID: state.session,
	})
	sp.Stop()
	if err != nil {
		return err
	}

	state.session = out.SessionID
	now := time.Now().UTC()
	state.turns = append(state.turns,
		model.ConversationTurn{Message: message, Role: model.RoleUser, Mode: state.mode, Timestamp: now, SessionID: out.SessionID},
		model.ConversationTurn{Message: out.Reply, Role: model.RoleAssistant, Mode: state.mode, Timestamp: now, SessionID: out.SessionID},
	)

	fmt.Fprintf(w, "%s\n", out.Reply)
	if out.Classification.Crisis {
		fmt.Fprintf(w, "\n%s\n", crisisNotice)
	}
	return nil
}

// handleSlash processes a /command line and reports whether to quit
func handleSlash(ctx context.Context, w io.Writer, uc *chat.UseCase, state *replState, line string) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/mode":
		if len(fields) < 2 {
			fmt.Fprintf(w, "Current mode: %s\n", state.mode)
			return false
		}
		next := model.Mode(fields[1])
		if err := next.Validate(); err != nil {
			fmt.Fprintf(w, "Unknown mode %q (logibot, shanebrain, angel)\n", fields[1])
			return false
		}
		state.mode = next
		fmt.Fprintf(w, "Switched to %s\n", next)

	case "/session":
		if len(fields) < 2 {
			if state.session == "" {
				fmt.Fprintf(w, "No session yet; one starts with your first message\n")
			} else {
				fmt.Fprintf(w, "Current session: %s\n", state.session)
			}
			return false
		}
		state.session = model.SessionID(fields[1])
		state.turns = nil
		fmt.Fprintf(w, "Continuing session %s\n", state.session)

	case "/save":
		writeTranscript(ctx, w, uc, state)

	default:
		fmt.Fprintf(w, "Commands: /mode [name], /session [id], /save, /quit\n")
	}

	return false
}

func writeTranscript(ctx context.Context, w io.Writer, uc *chat.UseCase, state *replState) {
	if state.session == "" || len(state.turns) == 0 {
		fmt.Fprintf(w, "Nothing to save yet\n")
		return
	}

	err := uc.SaveTranscript(ctx, &chat.Transcript{
		SessionID: state.session,
		Mode:      state.mode,
		Turns:     state.turns,
	})
	if err != nil {
		fmt.Fprintf(w, "Save failed: %s\n", err)
		return
	}
	fmt.Fprintf(w, "Transcript saved for %s\n", state.session)
}
