package website

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/serroba/page-analyzer/internal/events"
	"github.com/serroba/page-analyzer/internal/messaging"
	"go.uber.org/zap"
)

// Publishers groups the typed event publishers used by Service.
// Nil publishers are skipped.
type Publishers struct {
	URLRegistered  messaging.Publish[events.URLRegisteredEvent]
	CheckCompleted messaging.Publish[events.CheckCompletedEvent]
	CheckFailed    messaging.Publish[events.CheckFailedEvent]
}

// Service registers URLs and runs SEO checks against them.
type Service struct {
	urls      URLRepository
	checks    CheckRepository
	fetcher   Fetcher
	extractor Extractor
	publish   Publishers
	logger    *zap.Logger
}

// NewService wires the repositories, fetcher and extractor into a Service.
func NewService(
	urls URLRepository,
	checks CheckRepository,
	fetcher Fetcher,
	extractor Extractor,
	publish Publishers,
	logger *zap.Logger,
) *Service {
	return &Service{
		urls:      urls,
		checks:    checks,
		fetcher:   fetcher,
		extractor: extractor,
		publish:   publish,
		logger:    logger,
	}
}

// RegisterURL normalizes raw and stores it unless a URL with the same
// identity is already registered.
func (s *Service) RegisterURL(ctx context.Context, raw string) (*URL, error) {
	name, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	exists, err := s.urls.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check url exists: %w", err)
	}

	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	url := &URL{Name: name}

	if err = s.urls.Save(ctx, url); err != nil {
		if errors.Is(err, ErrConflict) {
			// Lost a race with a concurrent registration.
			if exists, existsErr := s.urls.ExistsByName(ctx, name); existsErr == nil && exists {
				return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
			}
		}

		return nil, fmt.Errorf("save url: %w", err)
	}

	s.logger.Info("url registered", zap.Int64("url_id", url.ID), zap.String("name", url.Name))

	if s.publish.URLRegistered != nil {
		event := &events.URLRegisteredEvent{URLID: url.ID, Name: url.Name, CreatedAt: url.CreatedAt}
		if err := s.publish.URLRegistered(event); err != nil {
			s.logger.Error("failed to publish url registered event", zap.Int64("url_id", url.ID), zap.Error(err))
		}
	}

	return url, nil
}

// ListURLs returns all URLs together with the latest check of each URL
// that has been checked at least once.
func (s *Service) ListURLs(ctx context.Context) ([]URL, map[int64]Check, error) {
	urls, err := s.urls.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list urls: %w", err)
	}

	latest, err := s.checks.LatestPerURL(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("latest checks: %w", err)
	}

	return urls, latest, nil
}

// GetURL returns a URL and its check history, most recent first.
func (s *Service) GetURL(ctx context.Context, id int64) (*URL, []Check, error) {
	url, err := s.urls.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	history, err := s.checks.FindByURLID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("find checks: %w", err)
	}

	return url, history, nil
}

// RunCheck fetches the URL, extracts its metadata and records the result.
// A failed fetch records nothing. Errors are always *CheckError.
func (s *Service) RunCheck(ctx context.Context, id int64) (*Check, error) {
	url, err := s.urls.Find(ctx, id)
	if err != nil {
		return nil, s.checkError(id, err)
	}

	page, err := s.fetcher.Fetch(ctx, url.Name)
	if err != nil {
		s.logger.Warn("page fetch failed", zap.Int64("url_id", id), zap.String("name", url.Name), zap.Error(err))
		s.publishFailed(url, err)

		return nil, &CheckError{Reason: ReasonCheckFailed, URLID: id, Err: err}
	}

	meta := s.extractor.Extract(page.Body)

	check := &Check{
		URLID:       url.ID,
		StatusCode:  page.StatusCode,
		Title:       meta.Title,
		H1:          meta.H1,
		Description: meta.Description,
	}

	if err = s.checks.Save(ctx, check); err != nil {
		s.logger.Error("failed to save check", zap.Int64("url_id", id), zap.Error(err))

		return nil, s.checkError(id, err)
	}

	s.logger.Info("url checked",
		zap.Int64("url_id", id),
		zap.Int64("check_id", check.ID),
		zap.Int("status_code", check.StatusCode),
	)

	if s.publish.CheckCompleted != nil {
		event := &events.CheckCompletedEvent{
			CheckID:    check.ID,
			URLID:      url.ID,
			Name:       url.Name,
			StatusCode: check.StatusCode,
			Title:      check.Title,
			CreatedAt:  check.CreatedAt,
		}
		if err := s.publish.CheckCompleted(event); err != nil {
			s.logger.Error("failed to publish check completed event", zap.Int64("url_id", id), zap.Error(err))
		}
	}

	return check, nil
}

func (s *Service) checkError(id int64, err error) *CheckError {
	if errors.Is(err, ErrNotFound) {
		return &CheckError{Reason: ReasonNotFound, URLID: id, Err: err}
	}

	return &CheckError{Reason: ReasonStorage, URLID: id, Err: err}
}

func (s *Service) publishFailed(url *URL, cause error) {
	if s.publish.CheckFailed == nil {
		return
	}

	event := &events.CheckFailedEvent{
		URLID:    url.ID,
		Name:     url.Name,
		Error:    cause.Error(),
		FailedAt: time.Now(),
	}
	if err := s.publish.CheckFailed(event); err != nil {
		s.logger.Error("failed to publish check failed event", zap.Int64("url_id", url.ID), zap.Error(err))
	}
}
