package cmd

import (
	"context"

	"github.com/lvillar/rollcall/internal/config"
)

type configKey struct{}

// WithConfig stores the loaded config in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFromContext retrieves the config from the context, or an empty one.
func ConfigFromContext(ctx context.Context) *config.Config {
	if v, ok := ctx.Value(configKey{}).(*config.Config); ok && v != nil {
		return v
	}
	return &config.Config{}
}
