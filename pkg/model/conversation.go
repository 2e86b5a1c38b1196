package model

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Validate checks if the role is valid
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return ErrInvalidRole
	}
}

// Mode selects the assistant persona a turn belongs to.
type Mode string

const (
	ModeLogibot    Mode = "logibot"
	ModeShanebrain Mode = "shanebrain"
	ModeAngel      Mode = "angel"
)

// DefaultMode is used when a turn arrives without an explicit persona.
const DefaultMode = ModeLogibot

// Validate checks if the mode is valid
func (m Mode) Validate() error {
	switch m {
	case ModeLogibot, ModeShanebrain, ModeAngel:
		return nil
	default:
		return ErrInvalidMode
	}
}

// ConversationTurn is one logged message of a chat session, either side.
type ConversationTurn struct {
	ID        RecordID  `json:"id"`
	Message   string    `json:"message"`
	Role      Role      `json:"role"`
	Mode      Mode      `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
	SessionID SessionID `json:"session_id"`
}
