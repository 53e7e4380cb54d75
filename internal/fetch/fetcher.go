// Package fetch implements website.Fetcher using gocolly.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/serroba/page-analyzer/internal/website"
)

// DefaultTimeout bounds a single fetch when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs one GET per call on a clone of a shared collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := colly.NewCollector(colly.Async(false))
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch GETs address and returns its status code and body.
// Error statuses are returned as pages, not errors.
func (f *Fetcher) Fetch(ctx context.Context, address string) (website.Page, error) {
	var (
		page     website.Page
		received bool
		fetchErr error
	)

	collector := f.baseCollector.Clone()
	// clones share the visited set
	collector.AllowURLRevisit = true
	collector.Context = ctx
	collector.ParseHTTPErrorResponse = true

	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}

	collector.OnResponse(func(r *colly.Response) {
		received = true
		page = website.Page{
			StatusCode: r.StatusCode,
			Body:       string(r.Body),
		}
	})

	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := run(ctx, collector, address); err != nil {
		return website.Page{}, fmt.Errorf("%w: %s: %w", website.ErrNetwork, address, err)
	}

	if fetchErr != nil {
		return website.Page{}, fmt.Errorf("%w: %s: %w", website.ErrNetwork, address, fetchErr)
	}

	if !received {
		return website.Page{}, fmt.Errorf("%w: %s: no response", website.ErrNetwork, address)
	}

	if page.Body == "" {
		return website.Page{}, fmt.Errorf("%w: %s (status %d)", website.ErrEmptyBody, address, page.StatusCode)
	}

	return page, nil
}

// run visits address on its own goroutine so Fetch returns as soon as ctx
// is done. The collector carries ctx too, which aborts the request itself.
func run(ctx context.Context, collector *colly.Collector, address string) error {
	done := make(chan error, 1)

	go func() {
		done <- collector.Visit(address)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil && ctx.Err() != nil {
			return fmt.Errorf("fetch canceled: %w", ctx.Err())
		}

		return err
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}

var _ website.Fetcher = (*Fetcher)(nil)
