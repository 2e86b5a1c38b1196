package repository

import (
	"context"
	"time"

	"github.com/thebardchat/angel-cloud/pkg/model"
)

// Collection names in the store. The schema is shared with earlier tooling
// that still reads these classes, so property names stay snake_case.
const (
	CollectionKnowledge    = "LegacyKnowledge"
	CollectionMemory       = "SessionMemory"
	CollectionConversation = "Conversation"
	CollectionCrisis       = "CrisisLog"
)

// Match is a free-text relevance term over a single text property.
type Match struct {
	Field string
	Text  string
}

// Condition is an exact-match filter on one property. Multiple conditions
// are AND-combined.
type Condition struct {
	Field string
	Value string
}

// Query describes one retrieval. Callers build this value object; only the
// store implementation turns it into backend syntax.
type Query struct {
	Collection string
	Match      *Match      // optional relevance term
	Where      []Condition // optional equality filters
	SortDesc   string      // optional property name for newest-first order
	Limit      int
	Fields     []string // properties to return
}

// Record is one decoded row with the store-assigned object ID.
type Record struct {
	ID    model.RecordID
	Props map[string]any
}

// Str returns a string property, or "" when absent.
func (r Record) Str(field string) string {
	if v, ok := r.Props[field].(string); ok {
		return v
	}
	return ""
}

// Time parses a date property, or returns the zero time when absent or
// malformed.
func (r Record) Time(field string) time.Time {
	v, ok := r.Props[field].(string)
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Store is the persistence boundary for all corpora
type Store interface {
	// Search runs a relevance and/or filtered query against one collection
	Search(ctx context.Context, q Query) ([]Record, error)

	// Insert appends one object and returns its store-assigned ID
	Insert(ctx context.Context, collection string, props map[string]any) (model.RecordID, error)

	// Count returns the number of objects, optionally narrowed by filters
	Count(ctx context.Context, collection string, where []Condition) (int, error)

	// CountGrouped returns object counts grouped by a property value
	CountGrouped(ctx context.Context, collection, field string) (map[string]int, error)

	// Ready reports whether the store is reachable and serving
	Ready(ctx context.Context) bool

	// EnsureSchema creates missing collections. Safe to call repeatedly.
	EnsureSchema(ctx context.Context) error
}
