package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/page-analyzer/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	URLID int64  `json:"urlId"`
	Name  string `json:"name"`
}

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

func eventMessage(t *testing.T, event any) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(uuid.NewString(), payload)
}

// outcome waits for msg to be acked or nacked.
func outcome(t *testing.T, msg *message.Message) string {
	t.Helper()

	select {
	case <-msg.Acked():
		return "ack"
	case <-msg.Nacked():
		return "nack"
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ack or nack")

		return ""
	}
}

func TestConsumer_Start(t *testing.T) {
	t.Run("subscribes to its topic", func(t *testing.T) {
		consumer := messaging.NewConsumer(
			newMockSubscriber(),
			"url.registered",
			func(_ context.Context, _ *testEvent) error { return nil },
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))
		assert.Equal(t, "url.registered", consumer.Topic())
		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("returns subscribe errors and still shuts down", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(
			sub,
			"url.registered",
			func(_ context.Context, _ *testEvent) error { return nil },
			zap.NewNop(),
		)

		require.Error(t, consumer.Start(context.Background()))
		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("shutdown before start is a no-op", func(t *testing.T) {
		consumer := messaging.NewConsumer(
			newMockSubscriber(),
			"url.registered",
			func(_ context.Context, _ *testEvent) error { return nil },
			zap.NewNop(),
		)

		assert.NoError(t, consumer.Shutdown())
	})
}

func TestConsumer_HandleMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload func(t *testing.T) *message.Message
		handler messaging.Handler[testEvent]
		want    string
	}{
		{
			name: "acks handled events",
			payload: func(t *testing.T) *message.Message {
				return eventMessage(t, testEvent{URLID: 1, Name: "https://example.com"})
			},
			handler: func(_ context.Context, _ *testEvent) error { return nil },
			want:    "ack",
		},
		{
			name: "acks and drops undecodable payloads",
			payload: func(_ *testing.T) *message.Message {
				return message.NewMessage(uuid.NewString(), []byte("invalid json"))
			},
			handler: func(_ context.Context, _ *testEvent) error {
				return errors.New("must not be called")
			},
			want: "ack",
		},
		{
			name: "nacks handler failures",
			payload: func(t *testing.T) *message.Message {
				return eventMessage(t, testEvent{URLID: 1})
			},
			handler: func(_ context.Context, _ *testEvent) error { return errors.New("handler error") },
			want:    "nack",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := newMockSubscriber()
			consumer := messaging.NewConsumer(sub, "check.completed", tt.handler, zap.NewNop())
			require.NoError(t, consumer.Start(context.Background()))

			defer func() { _ = consumer.Shutdown() }()

			msg := tt.payload(t)
			sub.msgChan <- msg

			assert.Equal(t, tt.want, outcome(t, msg))
		})
	}

	t.Run("passes the decoded event to the handler", func(t *testing.T) {
		sub := newMockSubscriber()
		received := make(chan testEvent, 1)

		consumer := messaging.NewConsumer(
			sub,
			"url.registered",
			func(_ context.Context, event *testEvent) error {
				received <- *event

				return nil
			},
			zap.NewNop(),
		)
		require.NoError(t, consumer.Start(context.Background()))

		defer func() { _ = consumer.Shutdown() }()

		msg := eventMessage(t, testEvent{URLID: 42, Name: "https://example.com"})
		sub.msgChan <- msg

		require.Equal(t, "ack", outcome(t, msg))
		assert.Equal(t, testEvent{URLID: 42, Name: "https://example.com"}, <-received)
	})

	t.Run("bounds handlers with the configured timeout", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"check.failed",
			func(ctx context.Context, _ *testEvent) error {
				<-ctx.Done()

				return ctx.Err()
			},
			zap.NewNop(),
			messaging.WithHandlerTimeout(20*time.Millisecond),
		)
		require.NoError(t, consumer.Start(context.Background()))

		defer func() { _ = consumer.Shutdown() }()

		msg := eventMessage(t, testEvent{URLID: 1})
		sub.msgChan <- msg

		assert.Equal(t, "nack", outcome(t, msg))
	})
}

func TestConsumer_Shutdown(t *testing.T) {
	t.Run("stops when the subscription channel closes", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"url.registered",
			func(_ context.Context, _ *testEvent) error { return nil },
			zap.NewNop(),
		)
		require.NoError(t, consumer.Start(context.Background()))

		require.NoError(t, sub.Close())

		assert.NoError(t, consumer.Shutdown())
	})
}
