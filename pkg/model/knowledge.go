package model

// DefaultCategory labels knowledge items imported without one.
const DefaultCategory = "general"

// KnowledgeItem is a chunk of the long-form knowledge base.
type KnowledgeItem struct {
	ID       RecordID `json:"id"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Source   string   `json:"source"`
}
