package model

import "time"

// DefaultSection labels memory items whose export section header was lost.
const DefaultSection = "memory"

// MemoryItem is one section of an imported session export.
type MemoryItem struct {
	ID          RecordID  `json:"id"`
	Content     string    `json:"content"`
	SessionDate string    `json:"session_date"`
	SessionFile string    `json:"session_file"`
	Section     string    `json:"section"`
	ImportedAt  time.Time `json:"imported_at"`
}
