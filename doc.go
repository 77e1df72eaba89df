// Package jokeviewer serves a list of jokes that can be machine-translated
// into any language the translation service supports.
//
// The root package re-exports the small HTTP framework the viewer is built
// on. The domain lives in package viewer: each browser session gets an
// Orchestrator that runs a joke fetch stage, a language catalog stage and a
// translation stage on its own event loop and publishes snapshots of what to
// display. Package handlers renders those snapshots as htmx pages; package
// tui renders them in a terminal.
//
// # Quick Start
//
//	client := query.NewClient()
//	registry := viewer.NewRegistry(client, viewer.RemoteSources(jokes, deepl))
//
//	app := jokeviewer.New(
//	    jokeviewer.WithCookieOptions(jokeviewer.WithCookieSecret(secret)),
//	    jokeviewer.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.ViewerID(),
//	    ),
//	    jokeviewer.WithHandlers(handlers.NewViewer(registry, 10)),
//	)
//
//	err := app.Run(
//	    jokeviewer.Address(":8080"),
//	    jokeviewer.ShutdownHook(func(context.Context) error { return registry.Close() }),
//	)
//
// # Handlers
//
// Handlers implement [Handler] and return errors instead of writing them:
//
//	func (h *Viewer) more(c jokeviewer.Context) error {
//	    if err := v.FetchMore(c); errors.Is(err, viewer.ErrTranslationInFlight) {
//	        return c.Error(http.StatusConflict, "translation in progress")
//	    }
//	    ...
//	}
//
// Errors go to the handler set with [WithErrorHandler]; panics are turned
// into errors by middlewares.Recover.
package jokeviewer
