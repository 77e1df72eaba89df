package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/jokeviewer/pkg/logger"
)

const defaultTimeout = 5 * time.Second

// Aggregate and per-check statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its probe. A failing check makes the
// service unhealthy.
type Checks map[string]CheckFunc

// Response is the readiness report.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the result of one probe.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger   *slog.Logger
	optional Checks
	timeout  time.Duration
}

// Option configures the readiness handler.
type Option func(*config)

// WithTimeout bounds the whole readiness run. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failing checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOptional adds checks whose failure only degrades the service. The
// viewer keeps serving untranslated jokes when the translation API is down.
func WithOptional(checks Checks) Option {
	return func(c *config) {
		if c.optional == nil {
			c.optional = make(Checks, len(checks))
		}
		for name, fn := range checks {
			c.optional[name] = fn
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{timeout: defaultTimeout, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes every check concurrently and aggregates the results.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return run(ctx, checks, newConfig(opts...))
}

func run(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 && len(cfg.optional) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		results  = make(map[string]Check, len(checks)+len(cfg.optional))
		failed   bool
		degraded bool
	)

	probe := func(name string, fn CheckFunc, critical bool) func() error {
		return func() error {
			res := Check{Status: StatusHealthy}
			if err := fn(ctx); err != nil {
				res = Check{Status: StatusUnhealthy, Error: err.Error()}
				if !critical {
					res.Status = StatusDegraded
				}
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Bool("critical", critical),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			results[name] = res
			switch {
			case res.Status == StatusUnhealthy:
				failed = true
			case res.Status == StatusDegraded:
				degraded = true
			}
			mu.Unlock()
			return nil
		}
	}

	var g errgroup.Group
	for name, fn := range checks {
		g.Go(probe(name, fn, true))
	}
	for name, fn := range cfg.optional {
		g.Go(probe(name, fn, false))
	}
	_ = g.Wait()

	status := StatusHealthy
	switch {
	case failed:
		status = StatusUnhealthy
	case degraded:
		status = StatusDegraded
	}
	return &Response{Status: status, Checks: results}
}
