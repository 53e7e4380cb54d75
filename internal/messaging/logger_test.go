package messaging_test

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/serroba/page-analyzer/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	t.Run("forwards messages with fields", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		logger := messaging.NewZapLogger(zap.New(core))

		logger.Info("subscribed", watermill.LogFields{"topic": "check.completed"})

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "subscribed", entries[0].Message)
		assert.Equal(t, "check.completed", entries[0].ContextMap()["topic"])
	})

	t.Run("attaches errors", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		logger := messaging.NewZapLogger(zap.New(core))

		logger.Error("publish failed", errors.New("boom"), nil)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	})

	t.Run("keeps fields added with With", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		logger := messaging.NewZapLogger(zap.New(core)).With(watermill.LogFields{"consumer": "events"})

		logger.Trace("tick", nil)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "events", entries[0].ContextMap()["consumer"])
	})
}
