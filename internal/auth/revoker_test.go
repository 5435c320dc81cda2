package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRevoker(t *testing.T) {
	server := miniredis.RunT(t)
	revoker := NewRedisRevoker(server.Addr(), "")
	t.Cleanup(func() { _ = revoker.Close() })
	ctx := context.Background()

	require.NoError(t, revoker.Ping(ctx))
	require.NoError(t, revoker.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))

	revoked, err := revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, server.Exists("revoked:jti-1"))

	revoked, err = revoker.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	server.FastForward(2 * time.Minute)
	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry expires with the token")
}

func TestRedisRevoker_IgnoresExpiredTokens(t *testing.T) {
	server := miniredis.RunT(t)
	revoker := NewRedisRevoker(server.Addr(), "")
	ctx := context.Background()

	require.NoError(t, revoker.Revoke(ctx, "old", time.Now().Add(-time.Second)))
	assert.False(t, server.Exists("revoked:old"))
}

func TestRedisRevoker_Unreachable(t *testing.T) {
	server := miniredis.RunT(t)
	revoker := NewRedisRevoker(server.Addr(), "")
	server.Close()

	_, err := revoker.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}
