package main

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/jokeviewer/config"
	"github.com/dmitrymomot/jokeviewer/pkg/deepl"
	"github.com/dmitrymomot/jokeviewer/pkg/httpclient"
	"github.com/dmitrymomot/jokeviewer/pkg/jokeapi"
	"github.com/dmitrymomot/jokeviewer/pkg/logger"
	"github.com/dmitrymomot/jokeviewer/pkg/query"
	"github.com/dmitrymomot/jokeviewer/viewer"
)

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "jokeviewer",
		Short: "Browse jokes and read them in another language",
		Long: `jokeviewer fetches a batch of jokes from JokeAPI and translates
them with DeepL into the language you pick.

Commands:
  serve  - web interface (htmx)
  tui    - terminal interface`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "TOML config file (defaults and environment only when empty)")

	root.AddCommand(
		newServeCmd(&cfgPath),
		newTUICmd(&cfgPath),
	)
	return root
}

func newLogger(cfg config.Config, w io.Writer, extractors ...logger.ContextExtractor) *slog.Logger {
	return logger.New(
		logger.WithWriter(w),
		logger.WithLevel(logger.ParseLevel(cfg.Log.Level)),
		logger.WithFormat(cfg.Log.Format),
		logger.WithExtractors(extractors...),
		logger.WithSentry(cfg.Sentry.DSN, cfg.Sentry.Environment),
	)
}

// stack is the shared core of both commands.
type stack struct {
	jokes  *jokeapi.Client
	deepl  *deepl.Client
	query  *query.Client
	source viewer.Sources
}

func newStack(cfg config.Config, log *slog.Logger) *stack {
	jokes := jokeapi.New(
		jokeapi.WithBaseURL(cfg.Jokes.BaseURL),
		jokeapi.WithAmount(cfg.Jokes.Amount),
		jokeapi.WithLang(cfg.Jokes.Lang),
		jokeapi.WithHTTPClient(httpclient.New(
			httpclient.WithTimeout(cfg.Jokes.Timeout.Duration),
			httpclient.WithMaxRetries(cfg.Jokes.MaxRetries),
			httpclient.WithLogger(log.With(slog.String("component", "jokeapi"))),
		)),
	)
	translator := deepl.New(
		deepl.WithBaseURL(cfg.DeepL.BaseURL),
		deepl.WithAuthKey(cfg.DeepL.AuthKey),
		deepl.WithHTTPClient(httpclient.New(
			httpclient.WithTimeout(cfg.DeepL.Timeout.Duration),
			httpclient.WithMaxRetries(cfg.DeepL.MaxRetries),
			httpclient.WithProxy(cfg.DeepL.Proxy),
			httpclient.WithLogger(log.With(slog.String("component", "deepl"))),
		)),
	)
	if cfg.DeepL.AuthKey == "" {
		log.Warn("deepl auth key is not set, translations will be unavailable")
	}

	return &stack{
		jokes:  jokes,
		deepl:  translator,
		query: query.NewClient(
			query.WithLogger(log),
			query.WithRequestTimeout(requestBudget(cfg)),
		),
		source: viewer.RemoteSources(jokes, translator),
	}
}

// requestBudget bounds one shared remote call including its retries.
func requestBudget(cfg config.Config) time.Duration {
	jokes := cfg.Jokes.Timeout.Duration * time.Duration(cfg.Jokes.MaxRetries+1)
	tr := cfg.DeepL.Timeout.Duration * time.Duration(cfg.DeepL.MaxRetries+1)
	return max(jokes, tr) + 30*time.Second
}

// viewerOptions are applied to every orchestrator.
func viewerOptions(cfg config.Config) []viewer.Option {
	return []viewer.Option{viewer.WithSourceLanguage(strings.ToUpper(cfg.Jokes.Lang))}
}
