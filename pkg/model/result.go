package model

// ResultSet holds per-source search results. Sources keep their own
// relevance order and are never interleaved.
type ResultSet struct {
	Knowledge    []KnowledgeItem    `json:"knowledge"`
	Memory       []MemoryItem       `json:"memory"`
	Conversation []ConversationTurn `json:"conversation"`
}

// Total returns the number of items across all sources
func (r *ResultSet) Total() int {
	return len(r.Knowledge) + len(r.Memory) + len(r.Conversation)
}

// Empty reports whether no source returned anything
func (r *ResultSet) Empty() bool {
	return r.Total() == 0
}
