package ingest

import (
	"github.com/thebardchat/angel-cloud/pkg/repository"
)

// UseCase imports markdown exports into the store.
type UseCase struct {
	store repository.Store
	dedup bool
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithDedup toggles the duplicate check before each memory insert
func WithDedup(v bool) Option {
	return func(uc *UseCase) {
		uc.dedup = v
	}
}

// New creates a new ingest UseCase instance
func New(store repository.Store, opts ...Option) *UseCase {
	uc := &UseCase{
		store: store,
		dedup: true,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
