package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevocationList_RevokeUntilExpiry(t *testing.T) {
	mr, client := newTestClient(t)
	list := NewRevocationList(client)
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Minute, mr.TTL("revoked:jti-1"))

	other, err := list.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, other)

	mr.FastForward(2 * time.Minute)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry disappears with the token's natural expiry")
}

func TestRevocationList_ExpiredTokenIsNoop(t *testing.T) {
	mr, client := newTestClient(t)
	list := NewRevocationList(client)

	for _, ttl := range []time.Duration{0, -time.Second} {
		require.NoError(t, list.Revoke(context.Background(), "jti-old", ttl))
	}
	assert.False(t, mr.Exists("revoked:jti-old"))
}

func TestRevocationList_ServerError(t *testing.T) {
	mr, client := newTestClient(t)
	list := NewRevocationList(client)

	mr.SetError("ERR injected failure")
	_, err := list.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
	assert.Error(t, list.Revoke(context.Background(), "jti-1", time.Minute))
}
