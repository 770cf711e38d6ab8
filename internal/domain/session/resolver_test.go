package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cerberus/pkg/errors"
)

// memStore is an in-memory Store that, like the legacy datastore,
// happily holds duplicate records for the same chat.
type memStore struct {
	records []*Session
	findErr error
}

func (m *memStore) Find(ctx context.Context, chatID int64) ([]*Session, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}

	var found []*Session
	for _, rec := range m.records {
		if rec.ChatID == chatID {
			found = append(found, rec)
		}
	}
	return found, nil
}

func (m *memStore) Upsert(ctx context.Context, sess *Session) error {
	for _, rec := range m.records {
		if rec.ChatID == sess.ChatID {
			rec.Status = sess.Status
			return nil
		}
	}
	m.records = append(m.records, &Session{ChatID: sess.ChatID, Status: sess.Status})
	return nil
}

func (m *memStore) Delete(ctx context.Context, sess *Session) error {
	kept := m.records[:0]
	for _, rec := range m.records {
		if rec != sess && rec.ChatID != sess.ChatID {
			kept = append(kept, rec)
		}
	}
	m.records = kept
	return nil
}

// seed inserts records directly, bypassing Upsert so duplicates survive
func (m *memStore) seed(sessions ...*Session) {
	m.records = append(m.records, sessions...)
}

func TestResolver_Resolve_FirstContact(t *testing.T) {
	store := &memStore{}
	resolver := NewResolver(store)
	ctx := context.Background()

	sess, err := resolver.Resolve(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, sess)

	assert.Equal(t, int64(42), sess.ChatID)
	assert.Equal(t, StatusPending, sess.Status)

	// Exactly one record was persisted
	records, err := store.Find(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestResolver_Resolve_ExistingRecordUnchanged(t *testing.T) {
	store := &memStore{}
	store.seed(&Session{ChatID: 42, Status: StatusAuthenticated})
	resolver := NewResolver(store)

	sess, err := resolver.Resolve(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), sess.ChatID)
	assert.Equal(t, StatusAuthenticated, sess.Status, "existing record must be returned unmutated")
}

func TestResolver_Resolve_RepairsDuplicates(t *testing.T) {
	store := &memStore{}
	store.seed(
		&Session{ChatID: 42, Status: StatusAuthenticated},
		&Session{ChatID: 42, Status: StatusPending},
		&Session{ChatID: 42, Status: StatusPending},
	)
	resolver := NewResolver(store)
	ctx := context.Background()

	sess, err := resolver.Resolve(ctx, 42)
	require.NoError(t, err)

	// Repair discards all prior state, including the authenticated record
	assert.Equal(t, StatusPending, sess.Status)

	records, err := store.Find(ctx, 42)
	require.NoError(t, err)
	require.Len(t, records, 1, "exactly one record must remain after repair")
	assert.Equal(t, StatusPending, records[0].Status)
}

func TestResolver_Resolve_DoesNotTouchOtherChats(t *testing.T) {
	store := &memStore{}
	store.seed(
		&Session{ChatID: 42, Status: StatusPending},
		&Session{ChatID: 42, Status: StatusPending},
		&Session{ChatID: 7, Status: StatusAuthenticated},
	)
	resolver := NewResolver(store)
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, 42)
	require.NoError(t, err)

	other, err := store.Find(ctx, 7)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, StatusAuthenticated, other[0].Status)
}

func TestResolver_Resolve_Idempotent(t *testing.T) {
	store := &memStore{}
	resolver := NewResolver(store)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, 42)
	require.NoError(t, err)

	second, err := resolver.Resolve(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, first.ChatID, second.ChatID)
	assert.Equal(t, first.Status, second.Status)

	records, err := store.Find(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestResolver_Resolve_StorePropagatesErrors(t *testing.T) {
	store := &memStore{findErr: errors.Wrap(errors.ErrUnavailable, "postgres down")}
	resolver := NewResolver(store)

	sess, err := resolver.Resolve(context.Background(), 42)
	require.Error(t, err)
	assert.Nil(t, sess)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "authenticated", StatusAuthenticated.String())
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "unknown(7)", Status(7).String())
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusAuthenticated.Valid())
	assert.True(t, StatusPending.Valid())
	assert.False(t, Status(2).Valid())
	assert.False(t, Status(-1).Valid())
}
