package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/page-analyzer/internal/handlers"
	"github.com/serroba/page-analyzer/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type metaOutput struct {
	Body handlers.RequestMeta
}

// newMetaRouter serves the request metadata seen by handlers at GET /meta.
func newMetaRouter(t *testing.T) *chi.Mux {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api))

	huma.Get(api, "/meta", func(ctx context.Context, _ *struct{}) (*metaOutput, error) {
		return &metaOutput{Body: handlers.RequestMetaFromContext(ctx)}, nil
	})

	return router
}

func TestRequestMeta(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       handlers.RequestMeta
	}{
		{
			name:       "uses the remote address without port",
			remoteAddr: "203.0.113.7:51234",
			want:       handlers.RequestMeta{ClientIP: "203.0.113.7"},
		},
		{
			name:       "prefers the first X-Forwarded-For entry",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.5, 10.0.0.1"},
			want:       handlers.RequestMeta{ClientIP: "198.51.100.2"},
		},
		{
			name:       "falls back to X-Real-IP",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       handlers.RequestMeta{ClientIP: "198.51.100.9"},
		},
		{
			name:       "captures user agent and referrer",
			remoteAddr: "203.0.113.7:51234",
			headers: map[string]string{
				"User-Agent": "TestAgent/1.0",
				"Referer":    "https://example.com/list",
			},
			want: handlers.RequestMeta{
				ClientIP:  "203.0.113.7",
				UserAgent: "TestAgent/1.0",
				Referrer:  "https://example.com/list",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newMetaRouter(t)

			req := httptest.NewRequest(http.MethodGet, "/meta", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Del("User-Agent")

			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)

			var got handlers.RequestMeta
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
