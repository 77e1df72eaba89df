package internal

// Handler declares routes on a router.
//
// Example:
//
//	type Pages struct {
//	    registry *viewer.Registry
//	}
//
//	func (h *Pages) Routes(r jokeviewer.Router) {
//	    r.GET("/", h.index)
//	    r.POST("/language", h.selectLanguage)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// A non-nil error is passed to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
