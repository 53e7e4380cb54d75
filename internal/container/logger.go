package container

import (
	"github.com/samber/do"
	"go.uber.org/zap"
)

// NewLogger builds a zap logger for the given format. "json" selects the
// production config, anything else the development console config.
func NewLogger(format string) (*zap.Logger, error) {
	if format == "json" {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}

// LoggerPackage provides the shared *zap.Logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat)
	})
}
