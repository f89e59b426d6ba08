// AngelaMos | 2026
// redis_test.go

package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptnu/portal/internal/config"
	"github.com/apptnu/portal/internal/core"
)

func TestRedisTokenRevocation(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rdb, err := core.NewRedis(ctx, config.RedisConfig{
		URL:      "redis://" + mr.Addr(),
		PoolSize: 2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	revoked, err := rdb.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, rdb.RevokeToken(ctx, "jti-1", time.Now().Add(time.Minute)))

	revoked, err = rdb.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)

	revoked, err = rdb.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevokeExpiredTokenIsNoop(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rdb, err := core.NewRedis(ctx, config.RedisConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, rdb.RevokeToken(ctx, "old", time.Now().Add(-time.Second)))
	assert.Empty(t, mr.Keys())
}
