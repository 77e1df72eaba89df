// Package handlers serves the joke viewer over HTTP.
//
// ViewerHandler maps a browser session (the viewer cookie set by
// middlewares.ViewerID) to its orchestrator in a viewer.Registry and renders
// snapshots with the views package. Mutations answer with the app region for
// htmx requests and redirect back to the page otherwise.
//
// ErrorHandler is the app-wide error boundary: any handler error or
// recovered panic renders the generic error alert.
package handlers
