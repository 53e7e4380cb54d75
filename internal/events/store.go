package events

import "context"

// Store defines the interface for persisting domain events.
type Store interface {
	SaveURLRegistered(ctx context.Context, event *URLRegisteredEvent) error
	SaveCheckCompleted(ctx context.Context, event *CheckCompletedEvent) error
	SaveCheckFailed(ctx context.Context, event *CheckFailedEvent) error
}
