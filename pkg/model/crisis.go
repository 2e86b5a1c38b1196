package model

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Validate checks if the severity is valid
func (s Severity) Validate() error {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return nil
	default:
		return ErrInvalidSeverity
	}
}

// CrisisEvent records an input that tripped the crisis screen. Events are
// append-only; nothing in the system updates or deletes them.
type CrisisEvent struct {
	ID        RecordID  `json:"id"`
	InputText string    `json:"input_text"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}
