// Package internal holds the HTTP application core: App, Context, Router,
// the chi adapter and the graceful-shutdown runtime.
//
// Import "github.com/dmitrymomot/jokeviewer" instead; it re-exports the
// public API.
//
// # Handlers
//
// Handlers implement Handler and declare routes. Route functions return an
// error; the App passes it to the configured ErrorHandler unless a response
// was already written:
//
//	func (h *Pages) Routes(r internal.Router) {
//	    r.GET("/", h.index)
//	    r.POST("/jokes/more", h.more)
//	}
//
// # Context
//
// Context embeds context.Context, so it can be handed to any blocking call:
//
//	snap, err := v.Wait(c, version)
//
// Render writes templ-compatible components. For htmx requests it always
// answers 200, applies htmx response headers and appends out-of-band
// fragments; RenderPartial picks between a full page and a fragment.
//
// # Runtime
//
// App.Run listens, serves and, on SIGINT/SIGTERM or base context
// cancellation, shuts the server down before running shutdown hooks in
// registration order.
package internal
