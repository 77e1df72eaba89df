package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Output formats accepted by WithFormat.
const (
	FormatJSON = "json"
	FormatText = "text"
)

type options struct {
	writer      io.Writer
	format      string
	sentryDSN   string
	sentryEnv   string
	extractors  []ContextExtractor
	level       slog.Level
	sentryLevel slog.Level
}

// Option configures New.
type Option func(*options)

// WithLevel sets the minimum level written to the output.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithFormat selects FormatJSON (default) or FormatText.
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = strings.ToLower(format)
	}
}

// WithWriter redirects output. The terminal UI sends logs to a file so they
// do not corrupt the screen.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithExtractors adds context extractors applied to every record.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// WithSentry forwards warnings and errors to Sentry. An empty DSN is ignored.
func WithSentry(dsn, environment string) Option {
	return func(o *options) {
		o.sentryDSN = dsn
		o.sentryEnv = environment
	}
}

// WithSentryLevel sets the lowest level stored as a Sentry log.
// Errors always create Sentry issues. Default: warn.
func WithSentryLevel(level slog.Level) Option {
	return func(o *options) {
		o.sentryLevel = level
	}
}

// New creates a structured logger. Without a Sentry DSN it writes only to
// the configured writer; if Sentry fails to initialize the failure is logged
// and the logger falls back to the writer alone.
func New(opts ...Option) *slog.Logger {
	o := &options{
		writer:      os.Stdout,
		format:      FormatJSON,
		level:       slog.LevelInfo,
		sentryLevel: slog.LevelWarn,
	}
	for _, opt := range opts {
		opt(o)
	}

	var out slog.Handler
	hopts := &slog.HandlerOptions{Level: o.level}
	if o.format == FormatText {
		out = slog.NewTextHandler(o.writer, hopts)
	} else {
		out = slog.NewJSONHandler(o.writer, hopts)
	}

	if o.sentryDSN == "" {
		return slog.New(NewLogHandlerDecorator(out, o.extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         o.sentryDSN,
		Environment: o.sentryEnv,
		EnableLogs:  true,
	}); err != nil {
		slog.New(out).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(out, o.extractors...))
	}

	logLevels := []slog.Level{slog.LevelError}
	if o.sentryLevel <= slog.LevelWarn {
		logLevels = []slog.Level{slog.LevelWarn, slog.LevelError}
	}
	sh := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevels,
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(newMultiHandler(out, sh), o.extractors...))
}

// Flush waits for buffered Sentry events to be delivered.
// It is a no-op when Sentry was never initialized.
func Flush(timeout time.Duration) {
	if sentry.CurrentHub().Client() != nil {
		sentry.Flush(timeout)
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
