package chat

import (
	"context"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/usecase/brain"
	"github.com/thebardchat/angel-cloud/pkg/usecase/journal"
	"github.com/thebardchat/angel-cloud/pkg/utils/logging"
)

// Input is one inbound user message.
type Input struct {
	Message   string
	Mode      model.Mode
	SessionID model.SessionID
	Stream    bool
}

// Output is the assembled result of one exchange.
type Output struct {
	Reply          string
	SessionID      model.SessionID
	Classification model.Classification
	Context        model.ContextBlock
}

// Respond runs the full pipeline for one user message. Classification runs
// first so the crisis log is written even if retrieval or generation fails
// afterwards. Retrieval degrades to an empty context rather than failing
// the exchange. Turn logging failures are warned and swallowed; only
// configuration and generation errors reach the caller.
func (u *UseCase) Respond(ctx context.Context, input Input) (*Output, error) {
	if input.Message == "" {
		return nil, goerr.New("message is empty", goerr.T(model.ErrTagConfig))
	}

	mode := input.Mode
	if mode == "" {
		mode = model.DefaultMode
	}
	if err := mode.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid mode",
			goerr.V("mode", mode), goerr.T(model.ErrTagConfig))
	}

	session := input.SessionID
	if session == "" {
		session = model.NewSessionID()
	}

	classification := u.classifier.Classify(ctx, input.Message)

	rs := u.searcher.Search(ctx, brain.SearchInput{
		Query:            input.Message,
		Limit:            u.limit,
		SkipConversation: !u.includeHistory,
		Mode:             mode,
		SessionID:        session,
	})

	block := brain.Pack(rs, brain.PackOptions{
		Budget:              u.budget,
		IncludeConversation: u.includeHistory,
	})

	prompt, err := renderPrompt(mode, block.Text, input.Message, classification.Crisis)
	if err != nil {
		return nil, err
	}

	var reply string
	if input.Stream {
		var sb strings.Builder
		err := u.generator.Stream(ctx, prompt, func(token string) error {
			sb.WriteString(token)
			_, werr := io.WriteString(u.output, token)
			return werr
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to stream reply")
		}
		reply = sb.String()
	} else {
		generated, err := u.generator.Generate(ctx, prompt)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to generate reply")
		}
		reply = generated
	}

	u.logTurn(ctx, journal.TurnInput{
		Message: input.Message, Role: model.RoleUser, Mode: mode, SessionID: session,
	})
	u.logTurn(ctx, journal.TurnInput{
		Message: reply, Role: model.RoleAssistant, Mode: mode, SessionID: session,
	})

	return &Output{
		Reply:          reply,
		SessionID:      session,
		Classification: classification,
		Context:        block,
	}, nil
}

func (u *UseCase) logTurn(ctx context.Context, input journal.TurnInput) {
	if u.turns == nil {
		return
	}
	if _, _, err := u.turns.LogTurn(ctx, input); err != nil {
		logging.From(ctx).Warn("failed to log turn", "role", input.Role, "error", err)
	}
}
