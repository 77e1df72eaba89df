package main

import (
	"context"
	"crypto/rand"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/jokeviewer"
	"github.com/dmitrymomot/jokeviewer/config"
	"github.com/dmitrymomot/jokeviewer/handlers"
	"github.com/dmitrymomot/jokeviewer/locales"
	"github.com/dmitrymomot/jokeviewer/middlewares"
	"github.com/dmitrymomot/jokeviewer/pkg/i18n"
	"github.com/dmitrymomot/jokeviewer/pkg/logger"
	"github.com/dmitrymomot/jokeviewer/viewer"
	"github.com/dmitrymomot/jokeviewer/views"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the web server.

Routes:
  GET  /                 page
  GET  /jokes            app region (long-poll with ?v=<version>)
  POST /language         select a translation (form field "lang")
  POST /language/reset   back to the original text
  POST /jokes/more       fetch a new batch
  GET  /api/state        viewer state as JSON
  GET  /health/live, /health/ready`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	log := newLogger(cfg, os.Stdout,
		middlewares.RequestIDExtractor(),
		middlewares.ViewerIDExtractor(),
	)

	secret := cfg.Server.CookieSecret
	if secret == "" {
		secret = rand.Text() + rand.Text()
		log.Warn("server.cookie_secret is not set, viewer sessions will not survive a restart")
	}

	st := newStack(cfg, log)
	registry := viewer.NewRegistry(st.query, st.source,
		viewer.WithIdleTTL(cfg.Viewer.IdleTTL.Duration),
		viewer.WithMaxSessions(cfg.Viewer.MaxSessions),
		viewer.WithRegistryLogger(log),
		viewer.WithViewerOptions(viewerOptions(cfg)...),
	)

	svc, err := locales.New(i18n.WithMissingKeyHandler(func(lang, namespace, key string) {
		log.Warn("missing translation",
			slog.String("lang", lang),
			slog.String("namespace", namespace),
			slog.String("key", key),
		)
	}))
	if err != nil {
		return err
	}

	app := jokeviewer.New(
		jokeviewer.WithLogger(log),
		jokeviewer.WithCookieOptions(
			jokeviewer.WithCookieSecret(secret),
			jokeviewer.WithCookieSecure(cfg.Server.CookieSecure),
		),
		jokeviewer.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.ViewerID(),
			middlewares.I18n(svc, middlewares.WithI18nNamespace(locales.Namespace)),
		),
		jokeviewer.WithErrorHandler(handlers.ErrorHandler),
		jokeviewer.WithNotFoundHandler(handlers.NotFound),
		jokeviewer.WithStaticFiles("/static/", views.Static, "static"),
		jokeviewer.WithHealthChecks(
			jokeviewer.WithReadinessCheck("jokeapi", st.jokes.Healthcheck()),
			jokeviewer.WithOptionalCheck("deepl", st.deepl.Healthcheck()),
		),
		jokeviewer.WithHandlers(
			handlers.NewViewer(registry, st.jokes.Amount(),
				handlers.WithPollTimeout(cfg.Server.PollTimeout.Duration),
			),
		),
	)

	return app.Run(
		jokeviewer.WithContext(ctx),
		jokeviewer.Address(cfg.Server.Address),
		jokeviewer.ShutdownTimeout(cfg.Server.ShutdownTimeout.Duration),
		jokeviewer.ShutdownHook(func(context.Context) error {
			return registry.Close()
		}),
		jokeviewer.ShutdownHook(func(context.Context) error {
			return st.query.Close()
		}),
		jokeviewer.ShutdownHook(func(context.Context) error {
			logger.Flush(2 * time.Second)
			return nil
		}),
	)
}
