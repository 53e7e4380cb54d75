package events

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/page-analyzer/internal/messaging"
	"go.uber.org/zap"
)

// RegisterConsumers adds one consumer per event topic to group, each
// forwarding decoded events to store.
func RegisterConsumers(
	group *messaging.ConsumerGroup,
	subscriber message.Subscriber,
	store Store,
	logger *zap.Logger,
	opts ...messaging.ConsumerOption,
) {
	group.Add(messaging.NewConsumer(subscriber, TopicURLRegistered, store.SaveURLRegistered, logger, opts...))
	group.Add(messaging.NewConsumer(subscriber, TopicCheckComplete, store.SaveCheckCompleted, logger, opts...))
	group.Add(messaging.NewConsumer(subscriber, TopicCheckFailed, store.SaveCheckFailed, logger, opts...))
}
