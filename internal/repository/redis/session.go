package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"cerberus/internal/domain/session"
	"cerberus/pkg/errors"
)

// Compile-time check that we implement the interface
var _ session.Store = (*SessionStore)(nil)

// SessionStore implements session.Store using Redis.
//
// Sessions are stored one key per chat, so the upsert is atomic by
// construction and Find never returns more than one record. The
// Resolver's duplicate-repair path stays unused with this backend; it
// remains wired as a safety net.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed session store
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Find returns the session stored for chatID, if any
func (s *SessionStore) Find(ctx context.Context, chatID int64) ([]*session.Session, error) {
	data, err := s.client.Get(ctx, s.key(chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session from redis: chat_id=%d", chatID)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session: chat_id=%d", chatID)
	}

	return []*session.Session{&sess}, nil
}

// Upsert stores a session, overwriting any existing one for the chat
func (s *SessionStore) Upsert(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal session: chat_id=%d", sess.ChatID)
	}

	// No TTL: sessions live until an explicit logout or repair
	if err := s.client.Set(ctx, s.key(sess.ChatID), data, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to save session to redis: chat_id=%d", sess.ChatID)
	}

	return nil
}

// Delete removes the session stored for the chat
func (s *SessionStore) Delete(ctx context.Context, sess *session.Session) error {
	if err := s.client.Del(ctx, s.key(sess.ChatID)).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete session from redis: chat_id=%d", sess.ChatID)
	}

	return nil
}

func (s *SessionStore) key(chatID int64) string {
	return fmt.Sprintf("session:%d", chatID)
}
