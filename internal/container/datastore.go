package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/page-analyzer/internal/extract"
	"github.com/serroba/page-analyzer/internal/fetch"
	"github.com/serroba/page-analyzer/internal/metrics"
	"github.com/serroba/page-analyzer/internal/store"
	"github.com/serroba/page-analyzer/internal/website"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// Postgres owns the connection pool and closes it on shutdown.
type Postgres struct {
	Pool  *pgxpool.Pool
	Store *store.PostgresStore
}

func (p *Postgres) Shutdown() error {
	p.Pool.Close()

	return nil
}

// Redis owns the shared client and closes it on shutdown.
type Redis struct {
	Client *redis.Client
}

func (r *Redis) Shutdown() error {
	return r.Client.Close()
}

// PostgresPackage provides a migrated *Postgres.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err = pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		pgStore := store.NewPostgresStore(pool)
		if err = pgStore.Migrate(ctx); err != nil {
			pool.Close()

			return nil, err
		}

		logger.Info("postgres connected")

		return &Postgres{Pool: pool, Store: pgStore}, nil
	})
}

// RedisPackage provides the shared *Redis client.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		return &Redis{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// RepositoryPackage provides the URL and check repositories for the
// configured backend. Postgres URL lookups go through the Redis cache
// when CacheTTL is positive.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.MemoryStore, error) {
		return store.NewMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (website.URLRepository, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.External() {
			return do.MustInvoke[*store.MemoryStore](i).URLs(), nil
		}

		urls := do.MustInvoke[*Postgres](i).Store.URLs()
		if opts.CacheTTL <= 0 {
			return urls, nil
		}

		client := do.MustInvoke[*Redis](i).Client

		return store.NewRedisCacheRepository(urls, client, opts.cacheTTL()), nil
	})

	do.Provide(i, func(i *do.Injector) (website.CheckRepository, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.External() {
			return do.MustInvoke[*store.MemoryStore](i).Checks(), nil
		}

		return do.MustInvoke[*Postgres](i).Store.Checks(), nil
	})
}

// ServicePackage provides the *website.Service with its fetcher, extractor
// and event publishers.
func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*website.Service, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		fetcher := metrics.NewFetcher(fetch.New(fetch.Config{
			UserAgent: opts.UserAgent,
			Timeout:   opts.fetchTimeout(),
		}), do.MustInvoke[*metrics.Metrics](i))

		return website.NewService(
			do.MustInvoke[website.URLRepository](i),
			do.MustInvoke[website.CheckRepository](i),
			fetcher,
			extract.New(),
			do.MustInvoke[website.Publishers](i),
			logger,
		), nil
	})
}
