//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/page-analyzer/internal/store"
	"github.com/serroba/page-analyzer/internal/website"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}

	return "localhost:6379"
}

func TestRedisCacheRepositoryIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	newCache := func(t *testing.T) (*store.RedisCacheRepository, *store.MemoryStore) {
		t.Helper()

		mem := store.NewMemoryStore()
		cache := store.NewRedisCacheRepository(mem.URLs(), client, time.Minute)
		require.NoError(t, cache.Clear(ctx))

		return cache, mem
	}

	t.Run("save writes through to the cache", func(t *testing.T) {
		cache, _ := newCache(t)
		url := &website.URL{Name: "https://cached.example"}

		require.NoError(t, cache.Save(ctx, url))

		name, err := client.HGet(ctx, "url:1", "name").Result()
		require.NoError(t, err)
		assert.Equal(t, url.Name, name)

		ttl, err := client.TTL(ctx, "url:1").Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)

		namesTTL, err := client.TTL(ctx, "url_names").Result()
		require.NoError(t, err)
		assert.Positive(t, namesTTL)
	})

	t.Run("find serves cached entries", func(t *testing.T) {
		cache, _ := newCache(t)
		url := &website.URL{Name: "https://cached.example"}
		require.NoError(t, cache.Save(ctx, url))

		got, err := cache.Find(ctx, url.ID)

		require.NoError(t, err)
		assert.Equal(t, url.Name, got.Name)
		assert.Equal(t, url.CreatedAt.UnixNano(), got.CreatedAt.UnixNano())
	})

	t.Run("find falls back to the store and caches the result", func(t *testing.T) {
		cache, mem := newCache(t)
		url := &website.URL{Name: "https://uncached.example"}
		require.NoError(t, mem.URLs().Save(ctx, url))

		got, err := cache.Find(ctx, url.ID)
		require.NoError(t, err)
		assert.Equal(t, url.Name, got.Name)

		exists, err := client.Exists(ctx, "url:1").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("find passes through ErrNotFound", func(t *testing.T) {
		cache, _ := newCache(t)

		_, err := cache.Find(ctx, 42)

		assert.ErrorIs(t, err, website.ErrNotFound)
	})

	t.Run("exists by name caches positive answers only", func(t *testing.T) {
		cache, mem := newCache(t)
		require.NoError(t, mem.URLs().Save(ctx, &website.URL{Name: "https://known.example"}))

		exists, err := cache.ExistsByName(ctx, "https://known.example")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = cache.ExistsByName(ctx, "https://unknown.example")
		require.NoError(t, err)
		assert.False(t, exists)

		members, err := client.SMembers(ctx, "url_names").Result()
		require.NoError(t, err)
		assert.Equal(t, []string{"https://known.example"}, members)

		ttl, err := client.TTL(ctx, "url_names").Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})

	t.Run("clear drops cached entries", func(t *testing.T) {
		cache, _ := newCache(t)
		require.NoError(t, cache.Save(ctx, &website.URL{Name: "https://cached.example"}))

		require.NoError(t, cache.Clear(ctx))

		exists, err := client.Exists(ctx, "url:1", "url_names").Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})
}

func TestRateLimitRedisStoreIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	s := store.NewRateLimitRedisStore(client)
	key := "ratelimit-integration"
	require.NoError(t, client.Del(ctx, "ratelimit:"+key).Err())

	for want := int64(1); want <= 3; want++ {
		count, err := s.Record(ctx, key, time.Minute)

		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
}
