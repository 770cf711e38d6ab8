package postgres

import (
	"context"

	"cerberus/internal/domain/session"
	"cerberus/pkg/errors"
)

// Compile-time check that we implement the interface
var _ session.Store = (*SessionStore)(nil)

// SessionStore implements session.Store using sqlx.
//
// The sessions table deliberately carries no unique constraint on
// chat_id, matching the legacy datastore: concurrent first contact can
// insert duplicate rows, and the Resolver repairs them on the next
// command.
type SessionStore struct {
	db DBTX
}

// NewSessionStore creates a new Postgres-backed session store
func NewSessionStore(db DBTX) *SessionStore {
	return &SessionStore{db: db}
}

// Find returns every session row stored for chatID
func (s *SessionStore) Find(ctx context.Context, chatID int64) ([]*session.Session, error) {
	var sessions []*session.Session

	query := `SELECT chat_id, status FROM sessions WHERE chat_id = $1`

	if err := s.db.SelectContext(ctx, &sessions, query, chatID); err != nil {
		return nil, errors.Wrap(err, "failed to select sessions")
	}

	return sessions, nil
}

// Upsert persists a session, updating the existing row for the chat or
// inserting a new one
func (s *SessionStore) Upsert(ctx context.Context, sess *session.Session) error {
	update := `UPDATE sessions SET status = $2, updated_at = NOW() WHERE chat_id = $1`

	res, err := s.db.ExecContext(ctx, update, sess.ChatID, sess.Status)
	if err != nil {
		return errors.Wrap(err, "failed to update session")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected > 0 {
		return nil
	}

	insert := `INSERT INTO sessions (chat_id, status) VALUES ($1, $2)`

	if _, err := s.db.ExecContext(ctx, insert, sess.ChatID, sess.Status); err != nil {
		return errors.Wrap(err, "failed to insert session")
	}

	return nil
}

// Delete removes every row stored for the session's chat
func (s *SessionStore) Delete(ctx context.Context, sess *session.Session) error {
	query := `DELETE FROM sessions WHERE chat_id = $1`

	if _, err := s.db.ExecContext(ctx, query, sess.ChatID); err != nil {
		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}
