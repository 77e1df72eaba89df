package jokeviewer

import (
	"context"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/jokeviewer/internal"
	"github.com/dmitrymomot/jokeviewer/middlewares"
	"github.com/dmitrymomot/jokeviewer/pkg/cookie"
	"github.com/dmitrymomot/jokeviewer/pkg/health"
)

// Type aliases - public API
type (
	// App wires routes, middleware and error handling.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Component is the interface for renderable templates.
	Component = internal.Component

	// HTTPError is an error with an HTTP status.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option
)

// New creates an application.
//
// Example:
//
//	app := jokeviewer.New(
//	    jokeviewer.WithLogger(log),
//	    jokeviewer.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    jokeviewer.WithHandlers(handlers.NewViewer(registry, jokesPerBatch)),
//	)
//	err := app.Run(jokeviewer.Address(":8080"))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles mounts subDir of fsys at pattern.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithHealthChecks enables /health/live and /health/ready.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// Health options

func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a check whose failure answers 503.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithOptionalCheck adds a check whose failure only reports "degraded".
func WithOptionalCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithOptionalCheck(name, fn)
}

// Cookie options

func WithCookieSecret(secret string) CookieOption {
	return cookie.WithSecret(secret)
}

func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

// Run options

func Address(addr string) RunOption {
	return internal.Address(addr)
}

func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// ShutdownHook registers cleanup run after the server stops.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

func OnListen(fn func(net.Addr)) RunOption {
	return internal.OnListen(fn)
}

// Helpers

// ContextValue returns the value stored under key, or the zero T.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// QueryDefault returns a typed query parameter or defaultValue.
func QueryDefault[T ~string | ~int | ~uint64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// HTTP errors

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

// WithError attaches the cause to an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// WithErrorCode sets a stable error code on an HTTPError.
func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

// IsPanicError reports whether err came from a recovered panic.
func IsPanicError(err error) bool {
	return middlewares.IsPanicError(err)
}
