package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/thebardchat/angel-cloud/pkg/model"
)

// Transcript is the archived record of one chat session.
type Transcript struct {
	SessionID model.SessionID          `json:"session_id"`
	Mode      model.Mode               `json:"mode"`
	SavedAt   time.Time                `json:"saved_at"`
	Turns     []model.ConversationTurn `json:"turns"`
}

// SaveTranscript writes the transcript through the archive as indented
// JSON named after its session ID. SavedAt is stamped here.
func (u *UseCase) SaveTranscript(ctx context.Context, tr *Transcript) error {
	if u.archive == nil {
		return goerr.New("no archive configured for transcripts", goerr.T(model.ErrTagConfig))
	}
	if tr == nil || tr.SessionID == "" {
		return goerr.New("transcript has no session ID", goerr.T(model.ErrTagConfig))
	}

	tr.SavedAt = time.Now().UTC()

	w, err := u.archive.Put(ctx, transcriptName(tr.SessionID))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tr); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to encode transcript", goerr.V("session", tr.SessionID))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finish transcript", goerr.V("session", tr.SessionID))
	}

	return nil
}

// LoadTranscript reads a previously archived transcript.
func (u *UseCase) LoadTranscript(ctx context.Context, session model.SessionID) (*Transcript, error) {
	if u.archive == nil {
		return nil, goerr.New("no archive configured for transcripts", goerr.T(model.ErrTagConfig))
	}

	r, err := u.archive.Get(ctx, transcriptName(session))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var tr Transcript
	if err := json.NewDecoder(r).Decode(&tr); err != nil {
		return nil, goerr.Wrap(err, "failed to decode transcript", goerr.V("session", session))
	}

	return &tr, nil
}

func transcriptName(session model.SessionID) string {
	return "transcripts/" + string(session) + ".json"
}
