package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/page-analyzer/internal/ratelimit"
)

// RegisterRoutes registers all URL routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-url",
		Method:        http.MethodPost,
		Path:          "/urls",
		Summary:       "Register URL",
		Description:   "Normalizes the URL to scheme, host and port and registers it.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},
					{Window: time.Hour, Max: 300},
				},
			},
		},
	}, urlHandler.CreateURL)

	huma.Register(api, huma.Operation{
		OperationID: "list-urls",
		Method:      http.MethodGet,
		Path:        "/urls",
		Summary:     "List URLs",
		Description: "Lists registered URLs with the latest check of each.",
		Tags:        []string{"URLs"},
	}, urlHandler.ListURLs)

	huma.Register(api, huma.Operation{
		OperationID: "get-url",
		Method:      http.MethodGet,
		Path:        "/urls/{id}",
		Summary:     "Get URL",
		Description: "Returns a URL with its check history, most recent first.",
		Tags:        []string{"URLs"},
	}, urlHandler.GetURL)

	// Each check performs an outbound fetch.
	huma.Register(api, huma.Operation{
		OperationID:   "create-check",
		Method:        http.MethodPost,
		Path:          "/urls/{id}/checks",
		Summary:       "Run SEO check",
		Description:   "Fetches the page and records its status code, title, h1 and meta description.",
		Tags:          []string{"Checks"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
					{Window: 24 * time.Hour, Max: 500},
				},
			},
		},
	}, urlHandler.CreateCheck)
}
