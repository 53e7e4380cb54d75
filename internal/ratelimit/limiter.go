package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store keeps per-key request timestamps for sliding windows.
type Store interface {
	// Record adds a request for key, drops entries older than window and
	// returns how many requests remain in the window, this one included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}

// Limiter defines the interface for rate limiting.
type Limiter interface {
	// Allow checks if a request from the given key should be allowed.
	Allow(ctx context.Context, key string) (allowed bool, err error)
}

// LimitConfig is a maximum number of requests within a window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// LimitExceeded describes the limit a request ran into.
type LimitExceeded struct {
	Config LimitConfig
	Count  int64
}

// SlidingWindowLimiter implements rate limiting using a sliding window algorithm.
type SlidingWindowLimiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter.
func NewSlidingWindowLimiter(store Store, limit int64, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Record(ctx, key, l.window)
	if err != nil {
		return false, err
	}

	return count <= l.limit, nil
}

// CheckLimits records a request against every limit and returns the first
// one exceeded, or nil when the request is allowed. Each window is tracked
// under its own key.
func CheckLimits(ctx context.Context, store Store, key string, limits []LimitConfig) (*LimitExceeded, error) {
	for _, limit := range limits {
		windowKey := fmt.Sprintf("%s:%d", key, limit.Window.Milliseconds())

		count, err := store.Record(ctx, windowKey, limit.Window)
		if err != nil {
			return nil, err
		}

		if count > limit.Max {
			return &LimitExceeded{Config: limit, Count: count}, nil
		}
	}

	return nil, nil
}
