package session

import (
	"context"
	"testing"
	"time"

	"pasar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RevokeUntilExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-1", now.Add(time.Hour)))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = store.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, _ = store.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked, "revocation should lapse with the token")
}

func TestMemoryStore_IgnoresExpiredTokens(t *testing.T) {
	now := time.Now()
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(context.Background(), "old", now.Add(-time.Minute)))
	assert.Empty(t, store.revoked)
}

func TestSession_Roles(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.IsUser())
	assert.True(t, (&Session{Role: models.RoleUser}).IsUser())
	assert.True(t, (&Session{Role: models.RoleVendor}).IsVendor())
	assert.False(t, (&Session{Role: models.RoleVendor}).IsUser())
}
