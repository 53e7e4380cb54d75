package website

import "context"

// URLRepository persists registered URLs.
type URLRepository interface {
	// Save inserts the URL and fills in its ID and CreatedAt.
	// Returns ErrConflict when the name is already taken.
	Save(ctx context.Context, url *URL) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	// Find returns ErrNotFound when no URL has the given id.
	Find(ctx context.Context, id int64) (*URL, error)
	// List returns every URL ordered by ID ascending.
	List(ctx context.Context) ([]URL, error)
	Clear(ctx context.Context) error
}

// CheckRepository persists check history.
type CheckRepository interface {
	// Save inserts the check and fills in its ID and CreatedAt.
	// Returns ErrNotFound when URLID does not reference a registered URL.
	Save(ctx context.Context, check *Check) error
	// FindByURLID returns the history of one URL, most recent first.
	FindByURLID(ctx context.Context, urlID int64) ([]Check, error)
	// LatestPerURL returns the most recent check of every URL that has one.
	LatestPerURL(ctx context.Context) (map[int64]Check, error)
	Clear(ctx context.Context) error
}

// Fetcher performs a single GET against an address.
// It returns ErrNetwork when no response was obtained and ErrEmptyBody when
// the response carried no body. Non-2xx statuses are not errors.
type Fetcher interface {
	Fetch(ctx context.Context, address string) (Page, error)
}

// Extractor pulls SEO metadata out of an HTML body. It never fails.
type Extractor interface {
	Extract(body string) Metadata
}
