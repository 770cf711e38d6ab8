package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cerberus/internal/domain/session"
	"cerberus/internal/testsupport"
)

func TestSessionStore_FindEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	store := NewSessionStore(testsupport.NewTestRedis(t))

	records, err := store.Find(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSessionStore_UpsertIsSingleValued(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	store := NewSessionStore(testsupport.NewTestRedis(t))
	ctx := context.Background()

	// Repeated upserts can never produce duplicates with a keyed store
	require.NoError(t, store.Upsert(ctx, session.NewPending(42)))
	require.NoError(t, store.Upsert(ctx, session.NewPending(42)))
	require.NoError(t, store.Upsert(ctx, &session.Session{ChatID: 42, Status: session.StatusAuthenticated}))

	records, err := store.Find(ctx, 42)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(42), records[0].ChatID)
	assert.Equal(t, session.StatusAuthenticated, records[0].Status)
}

func TestSessionStore_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	store := NewSessionStore(testsupport.NewTestRedis(t))
	ctx := context.Background()

	sess := session.NewPending(42)
	require.NoError(t, store.Upsert(ctx, sess))
	require.NoError(t, store.Delete(ctx, sess))

	records, err := store.Find(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSessionStore_ChatsAreIsolated(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	store := NewSessionStore(testsupport.NewTestRedis(t))
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, session.NewPending(42)))
	require.NoError(t, store.Upsert(ctx, &session.Session{ChatID: 7, Status: session.StatusAuthenticated}))
	require.NoError(t, store.Delete(ctx, session.NewPending(42)))

	records, err := store.Find(ctx, 7)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, session.StatusAuthenticated, records[0].Status)
}
