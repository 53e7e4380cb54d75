package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/serroba/page-analyzer/internal/website"
)

// MemoryStore is an in-memory backend for URLs and their checks.
// Use URLs and Checks to obtain the repository views.
type MemoryStore struct {
	mu          sync.RWMutex
	urls        map[int64]website.URL
	names       map[string]int64 // name -> url id
	checks      []website.Check
	nextURLID   int64
	nextCheckID int64
	now         func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls:  make(map[int64]website.URL),
		names: make(map[string]int64),
		now:   time.Now,
	}
}

// URLs returns the URL repository view of the store.
func (m *MemoryStore) URLs() *MemoryURLs {
	return &MemoryURLs{store: m}
}

// Checks returns the check repository view of the store.
func (m *MemoryStore) Checks() *MemoryChecks {
	return &MemoryChecks{store: m}
}

// MemoryURLs implements website.URLRepository on a MemoryStore.
type MemoryURLs struct {
	store *MemoryStore
}

func (r *MemoryURLs) Save(_ context.Context, url *website.URL) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.names[url.Name]; ok {
		return fmt.Errorf("%w: url %q", website.ErrConflict, url.Name)
	}

	m.nextURLID++
	url.ID = m.nextURLID
	url.CreatedAt = m.now()

	m.urls[url.ID] = *url
	m.names[url.Name] = url.ID

	return nil
}

func (r *MemoryURLs) ExistsByName(_ context.Context, name string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.names[name]

	return ok, nil
}

func (r *MemoryURLs) Find(_ context.Context, id int64) (*website.URL, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	url, ok := r.store.urls[id]
	if !ok {
		return nil, website.ErrNotFound
	}

	return &url, nil
}

func (r *MemoryURLs) List(_ context.Context) ([]website.URL, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	urls := make([]website.URL, 0, len(r.store.urls))
	for _, url := range r.store.urls {
		urls = append(urls, url)
	}

	sort.Slice(urls, func(i, j int) bool { return urls[i].ID < urls[j].ID })

	return urls, nil
}

// Clear removes every URL together with its checks.
func (r *MemoryURLs) Clear(_ context.Context) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()

	m.urls = make(map[int64]website.URL)
	m.names = make(map[string]int64)
	m.checks = nil
	m.nextURLID = 0
	m.nextCheckID = 0

	return nil
}

// MemoryChecks implements website.CheckRepository on a MemoryStore.
type MemoryChecks struct {
	store *MemoryStore
}

func (r *MemoryChecks) Save(_ context.Context, check *website.Check) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[check.URLID]; !ok {
		return fmt.Errorf("%w: url %d", website.ErrNotFound, check.URLID)
	}

	m.nextCheckID++
	check.ID = m.nextCheckID
	check.CreatedAt = m.now()

	m.checks = append(m.checks, *check)

	return nil
}

func (r *MemoryChecks) FindByURLID(_ context.Context, urlID int64) ([]website.Check, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var history []website.Check

	// checks are appended in id order
	for i := len(r.store.checks) - 1; i >= 0; i-- {
		if r.store.checks[i].URLID == urlID {
			history = append(history, r.store.checks[i])
		}
	}

	return history, nil
}

func (r *MemoryChecks) LatestPerURL(_ context.Context) (map[int64]website.Check, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	latest := make(map[int64]website.Check)

	for _, check := range r.store.checks {
		current, ok := latest[check.URLID]
		if !ok || newer(check, current) {
			latest[check.URLID] = check
		}
	}

	return latest, nil
}

func (r *MemoryChecks) Clear(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.checks = nil
	r.store.nextCheckID = 0

	return nil
}

// newer reports whether a was created after b, breaking ties by id.
func newer(a, b website.Check) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}

	return a.CreatedAt.After(b.CreatedAt)
}

// Compile-time checks.
var (
	_ website.URLRepository   = (*MemoryURLs)(nil)
	_ website.CheckRepository = (*MemoryChecks)(nil)
)
