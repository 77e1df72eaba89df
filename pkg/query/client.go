package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/jokeviewer/pkg/cache"
	"github.com/dmitrymomot/jokeviewer/pkg/logger"
)

// Fetcher loads the value for a single request key.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Client is the process-wide request cache. Successful results are stored by
// request key; concurrent requests for the same key share one call.
//
// A Client is created once at startup and shared by every stage. A shared
// call is not bound to the caller that started it: it runs until it
// completes, the request timeout passes or the client is closed. Each caller
// stops waiting when its own context is done.
type Client struct {
	ctx       context.Context
	cancel    context.CancelFunc
	store     *cache.Memory[any]
	logger    *slog.Logger
	group     singleflight.Group
	staleTime time.Duration
	timeout   time.Duration
}

// DefaultRequestTimeout bounds a single shared call.
const DefaultRequestTimeout = time.Minute

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger     *slog.Logger
	staleTime  time.Duration
	timeout    time.Duration
	maxEntries int
}

// WithStaleTime sets how long successful results stay fresh.
// Zero or negative keeps results for the process lifetime.
func WithStaleTime(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.staleTime = d
	}
}

// WithMaxEntries bounds the number of cached results; the least recently
// used entry is evicted first. Zero means unlimited.
func WithMaxEntries(n int) ClientOption {
	return func(o *clientOptions) {
		if n >= 0 {
			o.maxEntries = n
		}
	}
}

// WithRequestTimeout bounds each shared call.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewClient creates a request cache.
func NewClient(opts ...ClientOption) *Client {
	o := &clientOptions{logger: logger.NewNope(), timeout: DefaultRequestTimeout}
	for _, opt := range opts {
		opt(o)
	}

	staleTime := o.staleTime
	if staleTime <= 0 {
		staleTime = -1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ctx:    ctx,
		cancel: cancel,
		store: cache.NewMemory[any](
			cache.WithMaxEntries(o.maxEntries),
			cache.WithDefaultTTL(staleTime),
		),
		logger:    o.logger,
		staleTime: staleTime,
		timeout:   o.timeout,
	}
}

// Fetch returns the cached result for key, or calls fn on a miss.
func Fetch[T any](ctx context.Context, c *Client, key string, fn Fetcher[T]) (T, error) {
	if v, ok := Peek[T](c, key); ok {
		return v, nil
	}
	return load(ctx, c, key, fn)
}

// Refresh calls fn regardless of the cached value and stores the result.
// A refresh issued while a request for key is in flight joins that request.
func Refresh[T any](ctx context.Context, c *Client, key string, fn Fetcher[T]) (T, error) {
	return load(ctx, c, key, fn)
}

// Peek returns the cached result for key without fetching.
func Peek[T any](c *Client, key string) (T, bool) {
	var zero T
	v, err := c.store.Get(context.Background(), key)
	if err != nil {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Invalidate drops the cached result for key.
func (c *Client) Invalidate(key string) {
	_ = c.store.Delete(context.Background(), key)
}

// Close cancels shared calls in flight and releases the cache.
func (c *Client) Close() error {
	c.cancel()
	return c.store.Close()
}

func load[T any](ctx context.Context, c *Client, key string, fn Fetcher[T]) (T, error) {
	var zero T
	if err := c.ctx.Err(); err != nil {
		return zero, ErrClosed
	}

	ch := c.group.DoChan(key, func() (_ any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &panicError{value: r}
			}
		}()

		// Keep the caller's values (request id, viewer id) but not its
		// cancellation: other callers may be waiting on this result.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		stop := context.AfterFunc(c.ctx, cancel)
		defer stop()

		val, err := fn(callCtx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(callCtx, key, val, c.staleTime); err != nil {
			c.logger.WarnContext(ctx, "failed to cache query result",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return val, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Shared {
		c.logger.DebugContext(ctx, "query request shared", slog.String("key", key))
	}
	if res.Err != nil {
		// Re-raised on the caller so its own recovery sees it.
		var pe *panicError
		if errors.As(res.Err, &pe) {
			panic(pe.value)
		}
		return zero, res.Err
	}
	typed, ok := res.Val.(T)
	if !ok {
		return zero, ErrTypeMismatch
	}
	return typed, nil
}

// panicError carries a panic out of a shared call.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("query: shared call panicked: %v", e.value)
}
