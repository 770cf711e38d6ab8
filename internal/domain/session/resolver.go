package session

import (
	"context"

	"cerberus/internal/metrics"
	"cerberus/pkg/errors"
	"cerberus/pkg/logger"
)

// Resolver maps a chat identity to exactly one session record.
//
// The store offers no atomic create-if-absent, so two concurrent first
// messages from the same chat can both observe zero records and both
// insert one. The Resolver converges reactively: on the next command it
// purges every duplicate and recreates a single PENDING record,
// discarding any in-progress authentication state for that chat.
type Resolver struct {
	store Store
	log   *logger.Logger
}

// NewResolver creates a new session resolver
func NewResolver(store Store) *Resolver {
	return &Resolver{
		store: store,
		log:   logger.Get().With("component", "session_resolver"),
	}
}

// Resolve returns the canonical session record for chatID.
//
// Exactly one record found: returned unchanged. Zero records: a fresh
// PENDING record is persisted and returned (first contact and
// post-logout contact both land here). More than one record: all are
// deleted and a single fresh PENDING record is persisted and returned.
func (r *Resolver) Resolve(ctx context.Context, chatID int64) (*Session, error) {
	records, err := r.store.Find(ctx, chatID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query sessions for chat %d", chatID)
	}

	switch {
	case len(records) == 1:
		r.log.Debugw("Session found", "chat_id", chatID, "status", records[0].Status.String())
		return records[0], nil

	case len(records) > 1:
		r.log.Errorw("Multiple session records for chat, purging",
			"chat_id", chatID,
			"count", len(records),
		)
		metrics.DuplicateRepairs.Inc()

		for _, rec := range records {
			if err := r.store.Delete(ctx, rec); err != nil {
				return nil, errors.Wrapf(err, "failed to purge duplicate session for chat %d", chatID)
			}
		}

		return r.create(ctx, chatID)

	default:
		r.log.Infow("Creating session for new chat", "chat_id", chatID)
		return r.create(ctx, chatID)
	}
}

func (r *Resolver) create(ctx context.Context, chatID int64) (*Session, error) {
	sess := NewPending(chatID)
	if err := r.store.Upsert(ctx, sess); err != nil {
		return nil, errors.Wrapf(err, "failed to create session for chat %d", chatID)
	}
	return sess, nil
}
