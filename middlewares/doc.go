// Package middlewares provides the HTTP middleware of the joke viewer.
//
// # Request ID
//
// RequestID reuses X-Request-ID or X-Correlation-ID, or generates a ULID.
// Pair it with RequestIDExtractor in the logger so every record carries
// request_id.
//
// # Viewer ID
//
// ViewerID keeps a browser on the same orchestrator across requests with a
// signed cookie holding a UUID. A missing or tampered cookie is replaced.
// The cookie manager must have a secret:
//
//	app := jokeviewer.New(
//	    jokeviewer.WithCookieOptions(cookie.WithSecret(secret)),
//	    jokeviewer.WithMiddleware(middlewares.ViewerID()),
//	)
//
// # Recover
//
// Recover converts panics into *PanicError so the error handler can render
// the generic error alert instead of dropping the connection.
//
// # I18n
//
// I18n picks the UI language from the "lang" cookie, then Accept-Language,
// then the default, and stores a Translator used by Context.T.
package middlewares
