package brain

import (
	"context"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/repository"
)

var conversationFields = []string{"message", "role", "mode", "timestamp", "session_id"}

// searchKnowledge runs a relevance query over the knowledge base, optionally
// narrowed to one category.
func (u *UseCase) searchKnowledge(ctx context.Context, query, category string, limit int) ([]model.KnowledgeItem, error) {
	q := repository.Query{
		Collection: repository.CollectionKnowledge,
		Match:      &repository.Match{Field: "content", Text: query},
		Fields:     []string{"content", "category", "source"},
		Limit:      limit,
	}
	if category != "" {
		q.Where = append(q.Where, repository.Condition{Field: "category", Value: category})
	}

	records, err := u.store.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	items := make([]model.KnowledgeItem, 0, len(records))
	for _, rec := range records {
		items = append(items, model.KnowledgeItem{
			ID:       rec.ID,
			Content:  rec.Str("content"),
			Category: rec.Str("category"),
			Source:   rec.Str("source"),
		})
	}
	return items, nil
}

// searchMemory runs a relevance query over imported session memories.
func (u *UseCase) searchMemory(ctx context.Context, query string, limit int) ([]model.MemoryItem, error) {
	records, err := u.store.Search(ctx, repository.Query{
		Collection: repository.CollectionMemory,
		Match:      &repository.Match{Field: "content", Text: query},
		Fields:     []string{"content", "session_date", "session_file", "section", "imported_at"},
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]model.MemoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, model.MemoryItem{
			ID:          rec.ID,
			Content:     rec.Str("content"),
			SessionDate: rec.Str("session_date"),
			SessionFile: rec.Str("session_file"),
			Section:     rec.Str("section"),
			ImportedAt:  rec.Time("imported_at"),
		})
	}
	return items, nil
}

// searchConversation runs a relevance query over logged turns. Mode and
// session filters are AND-combined when both are given.
func (u *UseCase) searchConversation(ctx context.Context, query string, mode model.Mode, session model.SessionID, limit int) ([]model.ConversationTurn, error) {
	q := repository.Query{
		Collection: repository.CollectionConversation,
		Match:      &repository.Match{Field: "message", Text: query},
		Fields:     conversationFields,
		Limit:      limit,
	}
	if mode != "" {
		q.Where = append(q.Where, repository.Condition{Field: "mode", Value: string(mode)})
	}
	if session != "" {
		q.Where = append(q.Where, repository.Condition{Field: "session_id", Value: string(session)})
	}

	records, err := u.store.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return decodeTurns(records), nil
}

// RecentTurns returns the latest logged turns, newest first, optionally
// narrowed to a mode and session. Unlike the relevance paths this is a pure
// history lookup and surfaces storage errors to the caller.
func (u *UseCase) RecentTurns(ctx context.Context, mode model.Mode, session model.SessionID, limit int) ([]model.ConversationTurn, error) {
	if limit <= 0 {
		limit = u.limit
	}

	q := repository.Query{
		Collection: repository.CollectionConversation,
		SortDesc:   "timestamp",
		Fields:     conversationFields,
		Limit:      limit,
	}
	if mode != "" {
		q.Where = append(q.Where, repository.Condition{Field: "mode", Value: string(mode)})
	}
	if session != "" {
		q.Where = append(q.Where, repository.Condition{Field: "session_id", Value: string(session)})
	}

	records, err := u.store.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return decodeTurns(records), nil
}

// Categories returns knowledge item counts grouped by category
func (u *UseCase) Categories(ctx context.Context) (map[string]int, error) {
	return u.store.CountGrouped(ctx, repository.CollectionKnowledge, "category")
}

func decodeTurns(records []repository.Record) []model.ConversationTurn {
	turns := make([]model.ConversationTurn, 0, len(records))
	for _, rec := range records {
		turns = append(turns, model.ConversationTurn{
			ID:        rec.ID,
			Message:   rec.Str("message"),
			Role:      model.Role(rec.Str("role")),
			Mode:      model.Mode(rec.Str("mode")),
			Timestamp: rec.Time("timestamp"),
			SessionID: model.SessionID(rec.Str("session_id")),
		})
	}
	return turns
}
