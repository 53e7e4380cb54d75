package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/page-analyzer/internal/website"
)

// RedisCacheRepository wraps a URLRepository with Redis caching for reads.
// Registered URLs never change, so cached entries only need a TTL to bound
// memory, not to stay fresh.
type RedisCacheRepository struct {
	store    website.URLRepository
	client   *redis.Client
	prefix   string
	namesKey string
	ttl      time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store website.URLRepository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:    store,
		client:   client,
		prefix:   "url:",
		namesKey: "url_names",
		ttl:      ttl,
	}
}

// Save stores a URL in the underlying store and updates the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, url *website.URL) error {
	if err := r.store.Save(ctx, url); err != nil {
		return err
	}

	// Write-through: update cache after successful save
	r.cacheURL(ctx, url)

	return nil
}

// ExistsByName checks the cached name set before asking the store.
// Only positive answers are cached.
func (r *RedisCacheRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	if ok, err := r.client.SIsMember(ctx, r.namesKey, name).Result(); err == nil && ok {
		return true, nil
	}

	exists, err := r.store.ExistsByName(ctx, name)
	if err != nil {
		return false, err
	}

	if exists {
		pipe := r.client.Pipeline()
		r.addName(ctx, pipe, name)
		_, _ = pipe.Exec(ctx)
	}

	return exists, nil
}

// Find retrieves a URL by id, checking cache first.
func (r *RedisCacheRepository) Find(ctx context.Context, id int64) (*website.URL, error) {
	if url, err := r.getFromCache(ctx, id); err == nil {
		return url, nil
	}

	// Cache miss - fetch from store
	url, err := r.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheURL(ctx, url)

	return url, nil
}

// List always reads from the store.
func (r *RedisCacheRepository) List(ctx context.Context) ([]website.URL, error) {
	return r.store.List(ctx)
}

// Clear empties the store and drops every cached entry.
func (r *RedisCacheRepository) Clear(ctx context.Context) error {
	if err := r.store.Clear(ctx); err != nil {
		return err
	}

	keys := []string{r.namesKey}

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return err
	}

	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisCacheRepository) key(id int64) string {
	return r.prefix + strconv.FormatInt(id, 10)
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, id int64) (*website.URL, error) {
	result, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, website.ErrNotFound
	}

	var createdAt time.Time

	if ts, ok := result["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			createdAt = time.Unix(0, nanos)
		}
	}

	return &website.URL{
		ID:        id,
		Name:      result["name"],
		CreatedAt: createdAt,
	}, nil
}

func (r *RedisCacheRepository) cacheURL(ctx context.Context, url *website.URL) {
	pipe := r.client.Pipeline()
	key := r.key(url.ID)

	pipe.HSet(ctx, key, map[string]interface{}{
		"name":       url.Name,
		"created_at": url.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	r.addName(ctx, pipe, url.Name)

	_, _ = pipe.Exec(ctx)
}

// addName queues name into the known-names set. The set shares the entry
// TTL and is refreshed on every add, so it only holds recently seen names.
func (r *RedisCacheRepository) addName(ctx context.Context, pipe redis.Pipeliner, name string) {
	pipe.SAdd(ctx, r.namesKey, name)

	if r.ttl > 0 {
		pipe.Expire(ctx, r.namesKey, r.ttl)
	}
}

// Compile-time check.
var _ website.URLRepository = (*RedisCacheRepository)(nil)
