package session

import "fmt"

// Status is the authentication state of a chat session.
// The integer values are fixed wire values shared with the legacy
// datastore layout; do not reorder.
type Status int

const (
	// StatusAuthenticated means the chat passed the password check
	StatusAuthenticated Status = 0

	// StatusPending means the chat is awaiting the password
	StatusPending Status = 1
)

// String returns a human-readable status name
func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusPending:
		return "pending"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Valid reports whether the status is one of the defined values
func (s Status) Valid() bool {
	return s == StatusAuthenticated || s == StatusPending
}

// Session is the persisted authentication state for one chat.
// ChatID is the natural key; a chat with no record is implicitly
// logged out.
type Session struct {
	ChatID int64  `db:"chat_id" json:"chat_id"`
	Status Status `db:"status" json:"status"`
}

// NewPending creates a fresh session awaiting the password
func NewPending(chatID int64) *Session {
	return &Session{
		ChatID: chatID,
		Status: StatusPending,
	}
}
