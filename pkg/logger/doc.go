// Package logger builds the application's log/slog logger.
//
// Records go to a JSON or text handler on the configured writer. Context
// extractors add request-scoped attributes such as the request ID and the
// viewer ID to every record logged with a context:
//
//	log := logger.New(
//	    logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//	    logger.WithExtractors(logger.ContextValue(requestIDKey{}, "request_id")),
//	)
//	log.InfoContext(ctx, "jokes loaded", slog.Int("count", 10))
//
// When a Sentry DSN is configured, warnings are stored as Sentry logs and
// errors additionally open Sentry issues. Call [Flush] before exiting so
// buffered events are delivered. An empty DSN keeps logging local.
package logger
