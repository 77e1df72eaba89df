package internal

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runtimeConfig)

// Address sets the listen address. Defaults to ":8080".
func Address(addr string) RunOption {
	return func(c *runtimeConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// Logger sets the runtime logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runtimeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds graceful shutdown, hooks included. Defaults to 30s.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runtimeConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// ShutdownHook registers a cleanup function run after the server stops,
// in registration order.
//
// Example:
//
//	jokeviewer.ShutdownHook(func(context.Context) error { return registry.Close() })
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runtimeConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets the base context. Cancelling it stops the server.
func WithContext(ctx context.Context) RunOption {
	return func(c *runtimeConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// OnListen is called with the bound address once the listener is open.
// Useful with Address(":0").
func OnListen(fn func(net.Addr)) RunOption {
	return func(c *runtimeConfig) {
		c.ready = fn
	}
}
