package middlewares

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/jokeviewer/internal"
	"github.com/dmitrymomot/jokeviewer/pkg/logger"
)

// ViewerCookie identifies a browser session.
const ViewerCookie = "viewer"

// DefaultViewerMaxAge is the lifetime of the viewer cookie.
const DefaultViewerMaxAge = 30 * 24 * time.Hour

type viewerIDKey struct{}

type viewerConfig struct {
	generator func() string
	cookie    string
	maxAge    time.Duration
}

// ViewerOption configures ViewerID.
type ViewerOption func(*viewerConfig)

// WithViewerCookie sets the cookie name.
func WithViewerCookie(name string) ViewerOption {
	return func(cfg *viewerConfig) {
		if name != "" {
			cfg.cookie = name
		}
	}
}

// WithViewerMaxAge sets the cookie lifetime.
func WithViewerMaxAge(d time.Duration) ViewerOption {
	return func(cfg *viewerConfig) {
		if d > 0 {
			cfg.maxAge = d
		}
	}
}

// WithViewerGenerator sets the ID generator. Default: random UUID.
func WithViewerGenerator(gen func() string) ViewerOption {
	return func(cfg *viewerConfig) {
		if gen != nil {
			cfg.generator = gen
		}
	}
}

// ViewerID reads the viewer ID from a signed cookie, issuing a new one when
// the cookie is missing or tampered with. The ID selects the visitor's
// orchestrator.
func ViewerID(opts ...ViewerOption) internal.Middleware {
	cfg := &viewerConfig{
		generator: uuid.NewString,
		cookie:    ViewerCookie,
		maxAge:    DefaultViewerMaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	existing := internal.NewExtractor(internal.FromCookieSigned(cfg.cookie))

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			id, ok := existing.Extract(c)
			if !ok || uuid.Validate(id) != nil {
				id = cfg.generator()
				if err := c.SetCookieSigned(cfg.cookie, id, int(cfg.maxAge.Seconds())); err != nil {
					return err
				}
			}
			c.Set(viewerIDKey{}, id)
			return next(c)
		}
	}
}

// GetViewerID returns the viewer ID, or "" outside ViewerID.
func GetViewerID(c internal.Context) string {
	return internal.ContextValue[string](c, viewerIDKey{})
}

// ViewerIDExtractor adds viewer_id to log records.
func ViewerIDExtractor() logger.ContextExtractor {
	return logger.ContextValue(viewerIDKey{}, "viewer_id")
}

