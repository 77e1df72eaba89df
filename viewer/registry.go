package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/jokeviewer/pkg/cache"
	"github.com/dmitrymomot/jokeviewer/pkg/logger"
	"github.com/dmitrymomot/jokeviewer/pkg/query"
)

// Registry defaults.
const (
	DefaultIdleTTL     = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	logger      *slog.Logger
	viewerOpts  []Option
	idleTTL     time.Duration
	maxSessions int
}

// WithIdleTTL sets how long an unused viewer is kept.
func WithIdleTTL(d time.Duration) RegistryOption {
	return func(o *registryOptions) {
		if d > 0 {
			o.idleTTL = d
		}
	}
}

// WithMaxSessions bounds the number of live viewers; the least recently
// used one is stopped first. Zero means unlimited.
func WithMaxSessions(n int) RegistryOption {
	return func(o *registryOptions) {
		if n >= 0 {
			o.maxSessions = n
		}
	}
}

// WithRegistryLogger sets the registry logger. It is also handed to every
// orchestrator unless WithViewerOptions overrides it.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithViewerOptions sets options applied to every orchestrator.
func WithViewerOptions(opts ...Option) RegistryOption {
	return func(o *registryOptions) {
		o.viewerOpts = append(o.viewerOpts, opts...)
	}
}

// Registry keeps one running Orchestrator per viewer ID.
type Registry struct {
	sessions *cache.Memory[*Orchestrator]
	client   *query.Client
	logger   *slog.Logger
	src      Sources
	opts     []Option
	idleTTL  time.Duration
	closed   atomic.Bool
}

// NewRegistry creates a registry sharing client and src between viewers.
func NewRegistry(client *query.Client, src Sources, opts ...RegistryOption) *Registry {
	o := &registryOptions{
		logger:      logger.NewNope(),
		idleTTL:     DefaultIdleTTL,
		maxSessions: DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(o)
	}

	sweep := o.idleTTL / 2
	if sweep > time.Minute {
		sweep = time.Minute
	}

	r := &Registry{
		sessions: cache.NewMemory[*Orchestrator](
			cache.WithDefaultTTL(o.idleTTL),
			cache.WithCleanupInterval(sweep),
			cache.WithMaxEntries(o.maxSessions),
		),
		client:  client,
		logger:  o.logger,
		src:     src,
		opts:    append([]Option{WithLogger(o.logger)}, o.viewerOpts...),
		idleTTL: o.idleTTL,
	}
	r.sessions.SetEvictCallback(func(id string, v *Orchestrator) {
		r.logger.Debug("viewer stopped", slog.String("viewer_id", id))
		_ = v.Close()
	})
	return r
}

// Get returns the orchestrator for viewerID, creating and starting it on
// first use. Each call extends the viewer's idle deadline.
func (r *Registry) Get(ctx context.Context, viewerID string) (*Orchestrator, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	v, err := cache.GetOrSet(ctx, r.sessions, viewerID, func(context.Context) (*Orchestrator, time.Duration, error) {
		r.logger.DebugContext(ctx, "viewer created", slog.String("viewer_id", viewerID))
		return New(viewerID, r.client, r.src, r.opts...), r.idleTTL, nil
	})
	if errors.Is(err, cache.ErrClosed) {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	// Start is idempotent; concurrent first calls share the instance.
	if err := v.Start(); err != nil {
		return nil, err
	}
	r.sessions.Touch(viewerID, r.idleTTL)
	return v, nil
}

// Drop stops the viewer and forgets it. The next Get starts a fresh one.
func (r *Registry) Drop(ctx context.Context, viewerID string) error {
	if err := r.sessions.Delete(ctx, viewerID); err != nil {
		return ErrClosed
	}
	return nil
}

// Len returns the number of live viewers.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Close stops every viewer.
func (r *Registry) Close() error {
	r.closed.Store(true)
	return r.sessions.Close()
}
