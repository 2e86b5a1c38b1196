package journal

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/repository"
)

// TurnInput describes one conversation turn to record.
type TurnInput struct {
	Message   string
	Role      model.Role
	Mode      model.Mode
	SessionID model.SessionID
}

// LogTurn appends one conversation turn. Role defaults to user and mode to
// the default persona. When no session ID is given a fresh one is generated
// and returned, so each unattributed call starts its own session; callers
// that want to group turns must pass the returned ID back in.
func (u *UseCase) LogTurn(ctx context.Context, input TurnInput) (model.RecordID, model.SessionID, error) {
	if input.Message == "" {
		return "", "", goerr.New("message is empty", goerr.T(model.ErrTagConfig))
	}

	if input.Role == "" {
		input.Role = model.RoleUser
	}
	if err := input.Role.Validate(); err != nil {
		return "", "", goerr.Wrap(err, "invalid role",
			goerr.V("role", input.Role), goerr.T(model.ErrTagConfig))
	}

	if input.Mode == "" {
		input.Mode = model.DefaultMode
	}
	if err := input.Mode.Validate(); err != nil {
		return "", "", goerr.Wrap(err, "invalid mode",
			goerr.V("mode", input.Mode), goerr.T(model.ErrTagConfig))
	}

	session := input.SessionID
	if session == "" {
		session = model.NewSessionID()
	}

	id, err := u.store.Insert(ctx, repository.CollectionConversation, map[string]any{
		"message":    input.Message,
		"role":       string(input.Role),
		"mode":       string(input.Mode),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"session_id": string(session),
	})
	if err != nil {
		return "", "", err
	}

	return id, session, nil
}
