package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/jokeviewer"
	"github.com/dmitrymomot/jokeviewer/middlewares"
	"github.com/dmitrymomot/jokeviewer/pkg/htmx"
	"github.com/dmitrymomot/jokeviewer/views"
)

// ErrorHandler renders the generic error alert for every failure. htmx
// requests get the alert swapped over the whole app region, whichever
// element issued them. API routes get a JSON body instead. Server errors
// and panics are logged.
func ErrorHandler(c jokeviewer.Context, err error) error {
	code := http.StatusInternalServerError
	message := http.StatusText(code)
	if httpErr := jokeviewer.AsHTTPError(err); httpErr != nil {
		code = httpErr.Code
		message = httpErr.Message
	}

	if pe, ok := middlewares.AsPanicError(err); ok {
		c.LogError("panic recovered",
			slog.Any("panic", pe.Value),
			slog.String("stack", string(pe.Stack)),
		)
	} else if code >= http.StatusInternalServerError {
		c.LogError("request failed", slog.Any("error", err))
	} else {
		c.LogDebug("request rejected", slog.Int("status", code), slog.Any("error", err))
	}

	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		return c.JSON(code, map[string]any{"error": message, "status": code})
	}
	return renderError(c, code)
}

// NotFound renders the error page with 404.
func NotFound(c jokeviewer.Context) error {
	return renderError(c, http.StatusNotFound)
}

func renderError(c jokeviewer.Context, code int) error {
	return c.RenderPartial(code, views.ErrorPage(c), views.ErrorRegion(c),
		htmx.WithRetarget("#"+views.AppID),
		htmx.WithReswap(htmx.SwapOuterHTML),
	)
}
