package store

import (
	"context"

	"github.com/serroba/page-analyzer/internal/events"
	"go.uber.org/zap"
)

// Log is an events.Store that records events in the service log.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a new logging event store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveURLRegistered(_ context.Context, event *events.URLRegisteredEvent) error {
	l.logger.Info("url registered event received",
		zap.Int64("url_id", event.URLID),
		zap.String("name", event.Name),
		zap.Time("created_at", event.CreatedAt),
	)

	return nil
}

func (l *Log) SaveCheckCompleted(_ context.Context, event *events.CheckCompletedEvent) error {
	l.logger.Info("check completed event received",
		zap.Int64("check_id", event.CheckID),
		zap.Int64("url_id", event.URLID),
		zap.String("name", event.Name),
		zap.Int("status_code", event.StatusCode),
		zap.Time("created_at", event.CreatedAt),
	)

	return nil
}

func (l *Log) SaveCheckFailed(_ context.Context, event *events.CheckFailedEvent) error {
	l.logger.Warn("check failed event received",
		zap.Int64("url_id", event.URLID),
		zap.String("name", event.Name),
		zap.String("error", event.Error),
		zap.Time("failed_at", event.FailedAt),
	)

	return nil
}

var _ events.Store = (*Log)(nil)
