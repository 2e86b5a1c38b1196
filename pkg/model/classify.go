package model

// Urgency ranks how quickly a message needs attention. It is derived by the
// safety classifier and is distinct from CrisisEvent severity.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Validate checks if the urgency is valid
func (u Urgency) Validate() error {
	switch u {
	case UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return nil
	default:
		return ErrInvalidUrgency
	}
}

// Classification is the safety screen result for a single input.
type Classification struct {
	SentimentScore float64 `json:"sentiment_score"`
	Crisis         bool    `json:"crisis"`
	Urgency        Urgency `json:"urgency"`
}
