package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/page-analyzer/internal/ratelimit"
)

// RateLimitMemoryStore is an in-memory sliding window store for a single process.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	// timestamps are appended in order, so drop the expired prefix
	timestamps := s.requests[key]
	start := 0

	for start < len(timestamps) && !timestamps[start].After(cutoff) {
		start++
	}

	valid := append(timestamps[start:len(timestamps):len(timestamps)], now)
	s.requests[key] = valid

	return int64(len(valid)), nil
}

var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)
