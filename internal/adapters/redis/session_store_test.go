package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	session := domainauth.Session{
		ID:               "test-session-1",
		PrincipalID:      "principal-123",
		Username:         "jdoe",
		DisplayName:      "Jane Doe",
		Role:             domainauth.RoleLibrarian,
		CSRFToken:        "token-abc",
		LoginTime:        now,
		LastActivity:     now,
		LastRegeneration: now,
	}

	err := store.Save(ctx, session)
	require.NoError(t, err)

	retrieved, err := store.Get(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.PrincipalID, retrieved.PrincipalID)
	assert.Equal(t, session.Role, retrieved.Role)
	assert.Equal(t, session.CSRFToken, retrieved.CSRFToken)
	assert.WithinDuration(t, session.LastRegeneration, retrieved.LastRegeneration, time.Second)
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "non-existent")
	assert.Equal(t, ErrNotFound, err)
}

func TestSessionStore_SaveRejectsEmptyID(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	err := store.Save(context.Background(), domainauth.Session{})
	assert.Error(t, err)
}

func TestSessionStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "to-delete", PrincipalID: "p1"}))
	require.NoError(t, store.Delete(ctx, "to-delete"))

	_, err := store.Get(ctx, "to-delete")
	assert.Equal(t, ErrNotFound, err)

	// Deleting an absent session is a no-op.
	assert.NoError(t, store.Delete(ctx, "to-delete"))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStore_CustomTTLExpires(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStoreWithTTL(client, "session-test:", time.Second)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "short-lived", PrincipalID: "p1"}))

	time.Sleep(1100 * time.Millisecond)

	_, err := store.Get(ctx, "short-lived")
	assert.Equal(t, ErrNotFound, err)
}
