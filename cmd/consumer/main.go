package main

import (
	"context"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/samber/do"
	"github.com/serroba/page-analyzer/internal/container"
	"github.com/serroba/page-analyzer/internal/messaging"
	"go.uber.org/zap"
)

// consumerOptions holds the subset of the service options the event
// consumer needs.
type consumerOptions struct {
	RedisAddr string `default:"localhost:6379" help:"Redis server address" short:"r"`
	LogFormat string `default:"console"        help:"Log format: console or json"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *consumerOptions) {
		injector := do.New()
		do.ProvideValue(injector, &container.Options{
			RedisAddr: options.RedisAddr,
			LogFormat: options.LogFormat,
		})
		container.LoggerPackage(injector)
		container.RedisPackage(injector)
		container.ConsumerGroupPackage(injector)

		logger := do.MustInvoke[*zap.Logger](injector)
		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			group, err := do.Invoke[*messaging.ConsumerGroup](injector)
			if err != nil {
				logger.Fatal("failed to create consumer group", zap.Error(err))
			}

			if err := group.Start(ctx); err != nil {
				logger.Fatal("failed to start consumer group", zap.Error(err))
			}

			<-ctx.Done()
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")
			cancel()

			if err := injector.Shutdown(); err != nil {
				logger.Error("shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
		})
	})

	cli.Run()
}
