package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*AvailabilityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewAvailabilityCache(client, time.Minute), mr
}

func TestCacheVersionInitialises(t *testing.T) {
	cache, _ := newTestCache(t)
	ver, err := cache.Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), ver)
}

func TestCacheBumpChangesKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	before, err := cache.AvailabilityKey(ctx, 1, 0)
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.AvailabilityKey(ctx, 1, 0)
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestCacheFetchJSONCachesLoader(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.AvailabilityKey(ctx, 1, 0)
	require.NoError(t, err)

	loads := 0
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return 42, nil
	}

	var got int
	require.NoError(t, cache.FetchJSON(ctx, key, &got, loader))
	require.Equal(t, 42, got)

	got = 0
	require.NoError(t, cache.FetchJSON(ctx, key, &got, loader))
	require.Equal(t, 42, got)
	require.Equal(t, 1, loads)
}

func TestCacheNilClientFallsThrough(t *testing.T) {
	var cache *AvailabilityCache
	ctx := context.Background()

	key, err := cache.AvailabilityKey(ctx, 1, 2)
	require.NoError(t, err)
	require.Equal(t, "inventory:availability:1:2", key)

	var got int
	err = cache.FetchJSON(ctx, key, &got, func(ctx context.Context) (interface{}, error) { return 7, nil })
	require.NoError(t, err)
	require.Equal(t, 7, got)

	require.NoError(t, cache.Bump(ctx))
}
