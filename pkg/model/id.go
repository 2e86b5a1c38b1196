package model

import "github.com/google/uuid"

type RecordID string

// NewRecordID generates a new unique RecordID
func NewRecordID() RecordID {
	return RecordID(uuid.New().String())
}

type SessionID string

// NewSessionID generates a conversation session identifier in the
// session_<hex> form the store already holds. IDs are uuid-derived so two
// turns logged within the same second still get distinct sessions.
func NewSessionID() SessionID {
	return SessionID("session_" + uuid.NewString()[:8])
}
