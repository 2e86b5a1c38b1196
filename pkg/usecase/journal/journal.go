package journal

import (
	"github.com/thebardchat/angel-cloud/pkg/adapter"
	"github.com/thebardchat/angel-cloud/pkg/repository"
)

// DefaultLimit caps listing operations when the caller gives no limit
const DefaultLimit = 20

// UseCase provides append-only writes of conversation turns and crisis
// events, plus read access to the crisis log.
type UseCase struct {
	store   repository.Store
	archive adapter.Archive
	limit   int
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithArchive sets the archive used for crisis exports
func WithArchive(a adapter.Archive) Option {
	return func(uc *UseCase) {
		uc.archive = a
	}
}

// WithLimit sets the default listing limit
func WithLimit(n int) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.limit = n
		}
	}
}

// New creates a new journal UseCase instance
func New(store repository.Store, opts ...Option) *UseCase {
	uc := &UseCase{
		store: store,
		limit: DefaultLimit,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
