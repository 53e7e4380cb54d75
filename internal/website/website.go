package website

import "time"

// URL is a registered website identified by its normalized name.
type URL struct {
	ID        int64
	Name      string // scheme://host[:port], unique
	CreatedAt time.Time
}

// Check is one persisted SEO check of a registered URL.
type Check struct {
	ID          int64
	URLID       int64
	StatusCode  int
	Title       string
	H1          string
	Description string
	CreatedAt   time.Time
}

// Metadata holds the SEO fields extracted from a page.
type Metadata struct {
	Title       string
	H1          string
	Description string
}

// Page is the raw result of fetching a URL.
type Page struct {
	StatusCode int
	Body       string
}
