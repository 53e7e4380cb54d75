package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/page-analyzer/internal/website"
	"go.uber.org/zap"
)

// URLHandler exposes URL registration and SEO checks over HTTP.
type URLHandler struct {
	service *website.Service
	logger  *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(service *website.Service, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		service: service,
		logger:  logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for logging.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

func (h *URLHandler) CreateURL(ctx context.Context, req *CreateURLRequest) (*CreateURLResponse, error) {
	url, err := h.service.RegisterURL(ctx, req.Body.URL)
	if err != nil {
		switch {
		case errors.Is(err, website.ErrInvalidURL):
			return nil, huma.Error422UnprocessableEntity("invalid url", err)
		case errors.Is(err, website.ErrAlreadyExists):
			return nil, huma.Error409Conflict("url already exists")
		}

		h.logger.Error("failed to register url",
			zap.String("client_ip", RequestMetaFromContext(ctx).ClientIP),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to save url")
	}

	resp := &CreateURLResponse{}
	resp.Location = fmt.Sprintf("/urls/%d", url.ID)
	resp.Body = toURLBody(url)

	return resp, nil
}

func (h *URLHandler) ListURLs(ctx context.Context, _ *struct{}) (*ListURLsResponse, error) {
	urls, latest, err := h.service.ListURLs(ctx)
	if err != nil {
		h.logger.Error("failed to list urls", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list urls")
	}

	resp := &ListURLsResponse{}
	resp.Body.URLs = make([]URLBody, 0, len(urls))

	for i := range urls {
		body := toURLBody(&urls[i])

		if check, ok := latest[urls[i].ID]; ok {
			last := toCheckBody(&check)
			body.LastCheck = &last
		}

		resp.Body.URLs = append(resp.Body.URLs, body)
	}

	return resp, nil
}

func (h *URLHandler) GetURL(ctx context.Context, req *URLIDRequest) (*GetURLResponse, error) {
	url, history, err := h.service.GetURL(ctx, req.ID)
	if err != nil {
		if errors.Is(err, website.ErrNotFound) {
			return nil, huma.Error404NotFound("url not found")
		}

		h.logger.Error("failed to get url", zap.Int64("url_id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	resp := &GetURLResponse{}
	resp.Body.URLBody = toURLBody(url)
	resp.Body.Checks = make([]CheckBody, 0, len(history))

	for i := range history {
		resp.Body.Checks = append(resp.Body.Checks, toCheckBody(&history[i]))
	}

	return resp, nil
}

func (h *URLHandler) CreateCheck(ctx context.Context, req *URLIDRequest) (*CreateCheckResponse, error) {
	check, err := h.service.RunCheck(ctx, req.ID)
	if err != nil {
		reason, _ := website.ReasonOf(err)

		switch reason {
		case website.ReasonNotFound:
			return nil, huma.Error404NotFound("url not found")
		case website.ReasonCheckFailed:
			h.logger.Info("check failed",
				zap.Int64("url_id", req.ID),
				zap.String("client_ip", RequestMetaFromContext(ctx).ClientIP),
				zap.Error(err),
			)

			return nil, huma.Error502BadGateway("page could not be fetched")
		default:
			return nil, huma.Error500InternalServerError("failed to save check")
		}
	}

	resp := &CreateCheckResponse{}
	resp.Location = fmt.Sprintf("/urls/%d", req.ID)
	resp.Body = toCheckBody(check)

	return resp, nil
}
