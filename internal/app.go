package internal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/jokeviewer/pkg/cookie"
	"github.com/dmitrymomot/jokeviewer/pkg/health"
	"github.com/dmitrymomot/jokeviewer/pkg/logger"
)

// App wires routes, middleware and error handling onto a chi router.
// It is immutable after New.
type App struct {
	router          chi.Router
	errorHandler    ErrorHandler
	notFoundHandler HandlerFunc
	healthConfig    *healthConfig
	logger          *slog.Logger
	cookieManager   *cookie.Manager
	middlewares     []Middleware
	handlers        []Handler
	staticRoutes    []staticRoute
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates an application.
//
// Example:
//
//	app := jokeviewer.New(
//	    jokeviewer.WithMiddleware(middlewares.Recover()),
//	    jokeviewer.WithHandlers(handlers.NewViewer(registry, i18n)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger.NewNope(),
		cookieManager: cookie.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRoutes()
	return a
}

// ServeHTTP makes the App an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run serves the app and blocks until shutdown.
//
// Example:
//
//	err := app.Run(
//	    jokeviewer.Address(":8080"),
//	    jokeviewer.ShutdownHook(registryShutdown),
//	)
func (a *App) Run(opts ...RunOption) error {
	cfg := runtimeConfig{
		handler:         a,
		logger:          a.logger,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return runServer(cfg)
}

func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		hc := a.healthConfig
		a.router.Get(hc.livenessPath, health.LivenessHandler())
		a.router.Get(hc.readinessPath, health.ReadinessHandler(hc.checks,
			health.WithOptional(hc.optional),
			health.WithLogger(a.logger),
		))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError renders err unless a response is already on the wire.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		a.logger.ErrorContext(c, "error after response was written", slog.Any("error", err))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			a.logger.ErrorContext(c, "error handler failed", slog.Any("error", herr))
		}
		return
	}
	code := http.StatusInternalServerError
	if httpErr := AsHTTPError(err); httpErr != nil {
		code = httpErr.Code
	}
	http.Error(c.Response(), http.StatusText(code), code)
}

type healthConfig struct {
	checks        health.Checks
	optional      health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets the liveness endpoint path. Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets the readiness endpoint path. Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a check whose failure makes the service unhealthy.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.checks[name] = fn
	}
}

// WithOptionalCheck adds a check whose failure only degrades the service.
//
// Example:
//
//	jokeviewer.WithOptionalCheck("deepl", deeplClient.Healthcheck())
func WithOptionalCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.optional[name] = fn
	}
}
