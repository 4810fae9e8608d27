package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewWithClient(rdb), mr
}

func TestRedisSetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "conv:abc", `{"turns":[]}`, time.Hour))

	got, err := c.Get(ctx, "conv:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"turns":[]}`, got)
}

func TestRedisGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisTTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "search:deadbeef", "v", time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "search:deadbeef")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisExpireRefresh(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "draft:abc", "v", time.Minute))
	require.NoError(t, c.Expire(ctx, "draft:abc", time.Hour))

	mr.FastForward(30 * time.Minute)

	got, err := c.Get(ctx, "draft:abc")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestRedisDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	require.NoError(t, c.Delete(ctx, "a", "b"))
	require.NoError(t, c.Delete(ctx))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
