package container

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/samber/do"
	"github.com/serroba/page-analyzer/internal/handlers"
	"github.com/serroba/page-analyzer/internal/health"
	"github.com/serroba/page-analyzer/internal/metrics"
	"github.com/serroba/page-analyzer/internal/middleware"
	"github.com/serroba/page-analyzer/internal/ratelimit"
	"github.com/serroba/page-analyzer/internal/store"
	"github.com/serroba/page-analyzer/internal/website"
	"go.uber.org/zap"
)

// RateLimitPackage provides the rate limit store and the default limiter.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.External() {
			return store.NewRateLimitMemoryStore(), nil
		}

		return store.NewRateLimitRedisStore(do.MustInvoke[*Redis](i).Client), nil
	})

	do.Provide(i, func(i *do.Injector) (ratelimit.Limiter, error) {
		opts := do.MustInvoke[*Options](i)

		return ratelimit.NewSlidingWindowLimiter(do.MustInvoke[ratelimit.Store](i), int64(opts.RateLimit), time.Minute), nil
	})
}

// MetricsPackage provides the Prometheus collectors.
func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Use(chimiddleware.RequestID, chimiddleware.Recoverer)
		router.Handle("/metrics", do.MustInvoke[*metrics.Metrics](i).Handler())

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)

		api := humachi.New(router, huma.DefaultConfig("Page Analyzer", "1.0.0"))
		api.UseMiddleware(
			do.MustInvoke[*metrics.Metrics](i).Middleware,
			middleware.RequestMeta(api),
			middleware.RateLimiter(
				api,
				do.MustInvoke[ratelimit.Limiter](i),
				do.MustInvoke[ratelimit.Store](i),
				logger,
			),
		)

		urlHandler := handlers.NewURLHandler(do.MustInvoke[*website.Service](i), logger)
		handlers.RegisterRoutes(api, urlHandler)
		health.RegisterRoutes(api, healthHandler(i))

		return api, nil
	})
}

func healthHandler(i *do.Injector) *health.Handler {
	opts := do.MustInvoke[*Options](i)
	if !opts.External() {
		return health.NewHandler(nil, nil)
	}

	return health.NewHandler(
		health.NewPostgresChecker(do.MustInvoke[*Postgres](i).Pool),
		health.NewRedisChecker(do.MustInvoke[*Redis](i).Client),
	)
}
