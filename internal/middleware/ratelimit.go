package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/page-analyzer/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a Huma middleware that limits requests per client
// (IP and User-Agent).
//
// Operations can override the default limiter through metadata stored
// under ratelimit.MetadataKey:
//   - Disabled: true skips rate limiting
//   - Limits: applies every listed window instead of the default limiter
//
// Custom limits are keyed by the operation's route template, so all
// requests matching "/urls/{id}/checks" share one counter per client.
func RateLimiter(
	api huma.API,
	limiter ratelimit.Limiter,
	store ratelimit.Store,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := clientKey(ctx)
		path := operationPath(ctx)

		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		if cfg != nil && len(cfg.Limits) > 0 {
			exceeded, err := ratelimit.CheckLimits(ctx.Context(), store, key+":"+path, cfg.Limits)
			if err != nil {
				logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
				_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

				return
			}

			if exceeded != nil {
				logger.Warn("rate limit exceeded",
					zap.String("path", path),
					zap.String("method", ctx.Method()),
					zap.Int64("count", exceeded.Count),
					zap.Int64("max", exceeded.Config.Max),
					zap.Duration("window", exceeded.Config.Window),
					zap.String("client_ip", clientIP(ctx)),
				)

				msg := fmt.Sprintf("rate limit exceeded: %d/%d requests in %s",
					exceeded.Count, exceeded.Config.Max, exceeded.Config.Window)
				_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)

				return
			}

			next(ctx)

			return
		}

		allowed, err := limiter.Allow(ctx.Context(), key)
		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if !allowed {
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}

// clientKey generates a unique key for rate limiting based on IP and User-Agent.
func clientKey(ctx huma.Context) string {
	ip := clientIP(ctx)
	ua := ctx.Header("User-Agent")

	hash := sha256.Sum256([]byte(ip + "|" + ua))

	return hex.EncodeToString(hash[:])
}

// clientIP extracts the client IP from the request, considering proxies.
func clientIP(ctx huma.Context) string {
	// X-Forwarded-For may contain a chain; the first entry is the client
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.RemoteAddr()
	if host == "" {
		host = ctx.Host()
	}

	ip, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return ip
}
