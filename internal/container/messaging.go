package container

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/serroba/page-analyzer/internal/events"
	eventstore "github.com/serroba/page-analyzer/internal/events/store"
	"github.com/serroba/page-analyzer/internal/messaging"
	"github.com/serroba/page-analyzer/internal/website"
	"go.uber.org/zap"
)

const (
	consumerGroupName = "page-analyzer-events"
	handlerTimeout    = 30 * time.Second
)

// PublisherGroupPackage provides the Redis stream publisher and the typed
// publish functions used by the service. The memory backend publishes
// nothing.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*Redis](i).Client
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (website.Publishers, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.External() {
			return website.Publishers{}, nil
		}

		publisher := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()

		return website.Publishers{
			URLRegistered:  messaging.NewPublishFunc[events.URLRegisteredEvent](publisher, events.TopicURLRegistered),
			CheckCompleted: messaging.NewPublishFunc[events.CheckCompletedEvent](publisher, events.TopicCheckComplete),
			CheckFailed:    messaging.NewPublishFunc[events.CheckFailedEvent](publisher, events.TopicCheckFailed),
		}, nil
	})
}

// ConsumerGroupPackage provides a consumer group that records every
// event topic through the logging event store.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*Redis](i).Client
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        client,
				ConsumerGroup: consumerGroupName,
				Consumer:      uuid.NewString(),
			},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		events.RegisterConsumers(
			group, subscriber, eventstore.NewLog(logger), logger,
			messaging.WithHandlerTimeout(handlerTimeout),
		)

		return group, nil
	})
}
