package chat

import (
	"context"
	"io"
	"os"

	"github.com/thebardchat/angel-cloud/pkg/adapter"
	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/usecase/brain"
	"github.com/thebardchat/angel-cloud/pkg/usecase/journal"
)

// Searcher retrieves context candidates for an inbound message.
type Searcher interface {
	Search(ctx context.Context, input brain.SearchInput) *model.ResultSet
}

// Classifier screens inbound text. Its crisis side effects happen inside
// Classify, so the orchestrator only consumes the result.
type Classifier interface {
	Classify(ctx context.Context, text string) model.Classification
}

// TurnLogger records conversation turns.
type TurnLogger interface {
	LogTurn(ctx context.Context, input journal.TurnInput) (model.RecordID, model.SessionID, error)
}

// UseCase orchestrates one conversational exchange: classify, retrieve,
// pack, generate, log.
type UseCase struct {
	searcher   Searcher
	generator  adapter.Generator
	classifier Classifier
	turns      TurnLogger

	output         io.Writer
	archive        adapter.Archive
	limit          int
	budget         int
	includeHistory bool
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithOutput sets the writer streamed tokens are echoed to
func WithOutput(w io.Writer) Option {
	return func(uc *UseCase) {
		uc.output = w
	}
}

// WithArchive sets the archive used for transcripts
func WithArchive(a adapter.Archive) Option {
	return func(uc *UseCase) {
		uc.archive = a
	}
}

// WithLimit sets the per-source retrieval limit
func WithLimit(n int) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.limit = n
		}
	}
}

// WithBudget sets the context packing budget
func WithBudget(n int) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.budget = n
		}
	}
}

// WithIncludeHistory enables conversation history retrieval and packing
func WithIncludeHistory(v bool) Option {
	return func(uc *UseCase) {
		uc.includeHistory = v
	}
}

// New creates a new chat UseCase instance
func New(searcher Searcher, generator adapter.Generator, classifier Classifier, turns TurnLogger, opts ...Option) *UseCase {
	uc := &UseCase{
		searcher:   searcher,
		generator:  generator,
		classifier: classifier,
		turns:      turns,
		output:     os.Stdout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
