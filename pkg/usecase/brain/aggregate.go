package brain

import (
	"context"
	"sync"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/utils/logging"
)

// SearchInput selects the corpora to query and their filters. All corpora
// are enabled unless skipped.
type SearchInput struct {
	Query string
	Limit int // per source; 0 means the usecase default

	SkipKnowledge    bool
	SkipMemory       bool
	SkipConversation bool

	Category  string          // optional knowledge filter
	Mode      model.Mode      // optional conversation filter
	SessionID model.SessionID // optional conversation filter
}

// Search fans out one goroutine per enabled corpus and waits for all of
// them. A failed source degrades to an empty slice with a warning; the
// merged result never carries an error, so a dead store yields an empty
// ResultSet rather than a failed request.
func (u *UseCase) Search(ctx context.Context, input SearchInput) *model.ResultSet {
	limit := input.Limit
	if limit <= 0 {
		limit = u.limit
	}

	var (
		wg sync.WaitGroup
		rs model.ResultSet
	)

	if !input.SkipKnowledge {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := u.searchKnowledge(ctx, input.Query, input.Category, limit)
			if err != nil {
				logging.From(ctx).Warn("knowledge search degraded to empty", "error", err)
				return
			}
			rs.Knowledge = items
		}()
	}

	if !input.SkipMemory {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := u.searchMemory(ctx, input.Query, limit)
			if err != nil {
				logging.From(ctx).Warn("memory search degraded to empty", "error", err)
				return
			}
			rs.Memory = items
		}()
	}

	if !input.SkipConversation {
		wg.Add(1)
		go func() {
			defer wg.Done()
			turns, err := u.searchConversation(ctx, input.Query, input.Mode, input.SessionID, limit)
			if err != nil {
				logging.From(ctx).Warn("conversation search degraded to empty", "error", err)
				return
			}
			rs.Conversation = turns
		}()
	}

	wg.Wait()
	return &rs
}
