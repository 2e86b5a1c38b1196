package brain

import (
	"github.com/thebardchat/angel-cloud/pkg/repository"
)

// DefaultLimit is the per-source result cap
const DefaultLimit = 5

// UseCase provides unified retrieval across the knowledge, session memory,
// and conversation corpora.
type UseCase struct {
	store repository.Store
	limit int
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithLimit sets the default per-source result cap
func WithLimit(n int) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.limit = n
		}
	}
}

// New creates a new brain UseCase instance
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
