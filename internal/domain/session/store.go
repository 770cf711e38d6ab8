package session

import "context"

// Store defines the interface for session storage operations.
//
// The storage layer does not enforce uniqueness of chat_id: Find may
// return more than one record for the same chat after concurrent first
// contact. The Resolver owns the repair of that anomaly; implementations
// whose backend upserts atomically by key (Redis) simply never produce
// duplicates.
//
// Storage unavailability is reported as an error wrapping
// errors.ErrUnavailable and is fatal for the command being processed.
type Store interface {
	// Find returns every record stored for chatID, zero or more
	Find(ctx context.Context, chatID int64) ([]*Session, error)

	// Upsert persists a session, inserting or updating by its ChatID
	Upsert(ctx context.Context, sess *Session) error

	// Delete removes a session record permanently
	Delete(ctx context.Context, sess *Session) error
}
