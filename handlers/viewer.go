package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/jokeviewer"
	"github.com/dmitrymomot/jokeviewer/middlewares"
	"github.com/dmitrymomot/jokeviewer/pkg/htmx"
	"github.com/dmitrymomot/jokeviewer/viewer"
	"github.com/dmitrymomot/jokeviewer/views"
)

// DefaultPollTimeout bounds one long-poll of GET /jokes.
const DefaultPollTimeout = 20 * time.Second

// EventFetchRejected is the client event fired when a request for more
// jokes is refused because a translation is running.
const EventFetchRejected = "jokes-rejected"

// ViewerHandler serves the joke viewer pages.
type ViewerHandler struct {
	registry    *viewer.Registry
	amount      int
	pollTimeout time.Duration
}

// ViewerOption configures a ViewerHandler.
type ViewerOption func(*ViewerHandler)

// WithPollTimeout sets how long GET /jokes waits for a newer snapshot.
func WithPollTimeout(d time.Duration) ViewerOption {
	return func(h *ViewerHandler) {
		if d > 0 {
			h.pollTimeout = d
		}
	}
}

// NewViewer creates the handler. amount is the joke batch size, used for
// the loading placeholders.
func NewViewer(registry *viewer.Registry, amount int, opts ...ViewerOption) *ViewerHandler {
	h := &ViewerHandler{
		registry:    registry,
		amount:      amount,
		pollTimeout: DefaultPollTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes implements jokeviewer.Handler.
func (h *ViewerHandler) Routes(r jokeviewer.Router) {
	r.GET("/", h.index)
	r.GET(views.PathJokes, h.poll)
	r.POST(views.PathMore, h.fetchMore)
	r.POST(views.PathLanguage, h.selectLanguage)
	r.POST(views.PathReset, h.resetLanguage)
	r.GET("/api/state", h.state)
}

// index renders the full page. A crashed session is replaced by a fresh one,
// so reloading the page is the way out of the error alert.
func (h *ViewerHandler) index(c jokeviewer.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}
	if o.Snapshot().Crashed {
		c.LogWarn("restarting crashed viewer")
		if err := h.registry.Drop(c, o.ID()); err != nil {
			return err
		}
		if o, err = h.orchestrator(c); err != nil {
			return err
		}
	}
	return c.Render(http.StatusOK, views.Page(c, o.Snapshot(), h.amount))
}

// poll waits for a snapshot newer than ?v= and renders it. On timeout the
// current snapshot is rendered; a busy one polls again.
func (h *ViewerHandler) poll(c jokeviewer.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c, h.pollTimeout)
	defer cancel()

	snap, err := o.Wait(ctx, jokeviewer.QueryDefault[uint64](c, "v", 0))
	switch {
	case err == nil, errors.Is(err, context.DeadlineExceeded):
	case errors.Is(err, context.Canceled):
		// Client went away.
		return nil
	default:
		return err
	}
	return h.render(c, http.StatusOK, snap)
}

func (h *ViewerHandler) fetchMore(c jokeviewer.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}

	if err := o.FetchMore(c); err != nil {
		if !errors.Is(err, viewer.ErrTranslationInFlight) {
			return err
		}
		return h.settled(c, o, http.StatusConflict, htmx.WithTrigger(EventFetchRejected))
	}
	return h.settled(c, o, http.StatusOK)
}

func (h *ViewerHandler) selectLanguage(c jokeviewer.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}

	lang := c.Form("lang")
	if err := o.SelectLanguage(c, lang); err != nil {
		if errors.Is(err, viewer.ErrUnknownLanguage) {
			return jokeviewer.ErrBadRequest("unknown language",
				jokeviewer.WithError(err),
				jokeviewer.WithErrorCode("unknown_language"),
			)
		}
		return err
	}
	c.LogDebug("language selected", slog.String("language", lang))
	return h.settled(c, o, http.StatusOK)
}

func (h *ViewerHandler) resetLanguage(c jokeviewer.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}
	if err := o.ResetLanguage(c); err != nil {
		return err
	}
	return h.settled(c, o, http.StatusOK)
}

// state returns the snapshot as JSON.
func (h *ViewerHandler) state(c jokeviewer.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o.Snapshot())
}

// settled waits for queued tasks (a pending language switch included) and
// answers with the resulting app region. Successful plain form posts are
// redirected to the page.
func (h *ViewerHandler) settled(c jokeviewer.Context, o *viewer.Orchestrator, code int, opts ...htmx.RenderOption) error {
	if err := o.Idle(c); err != nil {
		return err
	}
	if !c.IsHTMX() && code == http.StatusOK {
		return c.Redirect("/")
	}
	return h.render(c, code, o.Snapshot(), opts...)
}

func (h *ViewerHandler) render(c jokeviewer.Context, code int, snap viewer.Snapshot, opts ...htmx.RenderOption) error {
	return c.RenderPartial(code,
		views.Page(c, snap, h.amount),
		views.App(c, snap, h.amount),
		opts...,
	)
}

func (h *ViewerHandler) orchestrator(c jokeviewer.Context) (*viewer.Orchestrator, error) {
	id := middlewares.GetViewerID(c)
	if id == "" {
		return nil, errNoViewer
	}
	o, err := h.registry.Get(c, id)
	if errors.Is(err, viewer.ErrClosed) {
		return nil, jokeviewer.ErrServiceUnavailable("shutting down", jokeviewer.WithError(err))
	}
	return o, err
}
