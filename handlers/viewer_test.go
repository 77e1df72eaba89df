package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/jokeviewer"
	"github.com/dmitrymomot/jokeviewer/handlers"
	"github.com/dmitrymomot/jokeviewer/locales"
	"github.com/dmitrymomot/jokeviewer/middlewares"
	"github.com/dmitrymomot/jokeviewer/pkg/query"
	"github.com/dmitrymomot/jokeviewer/viewer"
)

const (
	secret  = "0123456789abcdef0123456789abcdef"
	timeout = 2 * time.Second
)

var catalog = []viewer.Language{
	{Code: "EN", Name: "English"},
	{Code: "DE", Name: "German"},
	{Code: "KL", Name: "Klingon"},
}

func sources(jokes ...string) viewer.Sources {
	return viewer.Sources{
		Jokes: func(context.Context) ([]string, error) {
			return jokes, nil
		},
		Languages: func(context.Context) ([]viewer.Language, error) {
			return catalog, nil
		},
		Translate: func(_ context.Context, texts []string, target string) ([]string, error) {
			out := make([]string, len(texts))
			for i, t := range texts {
				out[i] = strings.ToLower(target) + "ingon " + t
			}
			return out, nil
		},
	}
}

type env struct {
	t        *testing.T
	app      http.Handler
	registry *viewer.Registry
	id       string
	cookie   *http.Cookie
}

func newEnv(t *testing.T, src viewer.Sources) *env {
	t.Helper()

	client := query.NewClient()
	t.Cleanup(func() { _ = client.Close() })
	registry := viewer.NewRegistry(client, src)
	t.Cleanup(func() { _ = registry.Close() })

	svc, err := locales.New()
	require.NoError(t, err)

	id := uuid.NewString()
	e := &env{
		t:        t,
		registry: registry,
		id:       id,
		app: jokeviewer.New(
			jokeviewer.WithCookieOptions(jokeviewer.WithCookieSecret(secret)),
			jokeviewer.WithMiddleware(
				middlewares.Recover(),
				middlewares.ViewerID(middlewares.WithViewerGenerator(func() string { return id })),
				middlewares.I18n(svc, middlewares.WithI18nNamespace(locales.Namespace)),
			),
			jokeviewer.WithErrorHandler(handlers.ErrorHandler),
			jokeviewer.WithNotFoundHandler(handlers.NotFound),
			jokeviewer.WithHandlers(handlers.NewViewer(registry, 3,
				handlers.WithPollTimeout(100*time.Millisecond),
			)),
		),
	}

	rec := e.do(http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == middlewares.ViewerCookie {
			e.cookie = c
		}
	}
	require.NotNil(t, e.cookie)
	return e
}

func (e *env) do(method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	e.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}

	rec := httptest.NewRecorder()
	e.app.ServeHTTP(rec, req)
	return rec
}

func (e *env) settle() viewer.Snapshot {
	e.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	o, err := e.registry.Get(ctx, e.id)
	require.NoError(e.t, err)
	require.NoError(e.t, o.Settle(ctx))
	return o.Snapshot()
}

func TestViewer_Index(t *testing.T) {
	t.Parallel()

	e := newEnv(t, sources("funny joke"))
	require.Equal(t, 1, e.registry.Len())
	e.settle()

	rec := e.do(http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	require.Equal(t, 1, strings.Count(body, "<li>"))
	require.Contains(t, body, "<li>funny joke</li>")
	require.Contains(t, body, `<option value="KL">Klingon</option>`)
	require.NotContains(t, body, `<option value="EN">`)
	require.NotContains(t, body, "hx-get")
	require.Empty(t, rec.Result().Cookies(), "cookie is reused")
	require.Equal(t, 1, e.registry.Len())
}

func TestViewer_IndexLocalized(t *testing.T) {
	t.Parallel()

	e := newEnv(t, sources("funny joke"))
	e.settle()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(e.cookie)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")
	rec := httptest.NewRecorder()
	e.app.ServeHTTP(rec, req)

	require.Contains(t, rec.Body.String(), `<html lang="ru">`)
	require.Contains(t, rec.Body.String(), "1 шутка")
}

func TestViewer_SelectLanguage(t *testing.T) {
	t.Parallel()

	t.Run("htmx", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t, sources("funny joke"))
		e.settle()

		rec := e.do(http.MethodPost, "/language", url.Values{"lang": {"KL"}}, true)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, strings.HasPrefix(rec.Body.String(), `<main id="app"`))

		snap := e.settle()
		require.Equal(t, "KL", snap.Language)
		require.True(t, snap.CanReset)

		rec = e.do(http.MethodGet, "/jokes?v=0", nil, true)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, "<li>klingon funny joke</li>")
		require.Contains(t, body, `<option value="KL" selected>Klingon</option>`)
		require.Contains(t, body, `action="/language/reset"`)
	})

	t.Run("form post redirects", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t, sources("funny joke"))
		e.settle()

		rec := e.do(http.MethodPost, "/language", url.Values{"lang": {"de"}}, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))
		require.Equal(t, "DE", e.settle().Language)
	})

	t.Run("unknown language", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t, sources("funny joke"))
		e.settle()

		rec := e.do(http.MethodPost, "/language", url.Values{"lang": {"XX"}}, false)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "An unexpected error has occurred")
		require.Empty(t, e.settle().Language)
	})
}

func TestViewer_ResetLanguage(t *testing.T) {
	t.Parallel()

	e := newEnv(t, sources("funny joke"))
	e.settle()
	e.do(http.MethodPost, "/language", url.Values{"lang": {"KL"}}, true)
	e.settle()

	rec := e.do(http.MethodPost, "/language/reset", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<li>funny joke</li>")
	require.NotContains(t, body, "klingon")
	require.NotContains(t, body, `action="/language/reset"`)
}

func TestViewer_FetchMore(t *testing.T) {
	t.Parallel()

	t.Run("new batch", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		src := sources()
		src.Jokes = func(context.Context) ([]string, error) {
			return []string{"joke " + strconv.Itoa(int(calls.Add(1)))}, nil
		}
		e := newEnv(t, src)
		first := e.settle()
		require.Equal(t, []string{"joke 1"}, first.Display.Texts)

		rec := e.do(http.MethodPost, "/jokes/more", nil, true)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, strings.HasPrefix(rec.Body.String(), `<main id="app"`))

		second := e.settle()
		require.Equal(t, []string{"joke 2"}, second.Display.Texts)
		require.NotEqual(t, first.BatchID, second.BatchID)
	})

	t.Run("rejected while translating", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		src := sources("funny joke")
		translate := src.Translate
		src.Translate = func(ctx context.Context, texts []string, target string) ([]string, error) {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return translate(ctx, texts, target)
		}
		e := newEnv(t, src)
		e.settle()

		rec := e.do(http.MethodPost, "/language", url.Values{"lang": {"KL"}}, true)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `hx-get="/jokes?v=`)

		rec = e.do(http.MethodPost, "/jokes/more", nil, false)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, rec.Body.String(), "Translating...")
		require.Empty(t, rec.Header().Get("HX-Trigger"))

		rec = e.do(http.MethodPost, "/jokes/more", nil, true)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, handlers.EventFetchRejected, rec.Header().Get("HX-Trigger"))
		require.True(t, strings.HasPrefix(rec.Body.String(), `<main id="app"`))

		close(release)
		snap := e.settle()
		require.Equal(t, []string{"klingon funny joke"}, snap.Display.Texts)
	})
}

func TestViewer_Poll(t *testing.T) {
	t.Parallel()

	e := newEnv(t, sources("funny joke"))
	snap := e.settle()

	start := time.Now()
	rec := e.do(http.MethodGet, "/jokes?v="+strconv.FormatUint(snap.Version, 10), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	require.True(t, strings.HasPrefix(rec.Body.String(), `<main id="app" class="container">`))
	require.Contains(t, rec.Body.String(), "<li>funny joke</li>")

	rec = e.do(http.MethodGet, "/jokes", nil, false)
	require.True(t, strings.HasPrefix(rec.Body.String(), "<!DOCTYPE html>"))
}

func TestViewer_State(t *testing.T) {
	t.Parallel()

	e := newEnv(t, sources("funny joke"))
	e.settle()

	rec := e.do(http.MethodGet, "/api/state", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Display struct {
			Kind  string   `json:"kind"`
			Texts []string `json:"texts"`
		} `json:"display"`
		CanFetchMore bool `json:"can_fetch_more"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Equal(t, "ready", got.Display.Kind)
	require.Equal(t, []string{"funny joke"}, got.Display.Texts)
	require.True(t, got.CanFetchMore)
}

func TestViewer_Unavailable(t *testing.T) {
	t.Parallel()

	src := sources()
	src.Jokes = func(context.Context) ([]string, error) {
		return nil, errors.New("connection refused")
	}
	src.Languages = func(context.Context) ([]viewer.Language, error) {
		return catalog[:1], nil
	}
	e := newEnv(t, src)
	e.settle()

	body := e.do(http.MethodGet, "/", nil, false).Body.String()
	require.Contains(t, body, "Jokes could not be retrieved. Please try again later.")
	require.Contains(t, body, "Translation service is unavailable. Please try again later.")
	require.NotContains(t, body, "<select")
}

func TestViewer_CrashedSessionRestarts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	gate := make(chan struct{})
	src := sources()
	src.Jokes = func(context.Context) ([]string, error) {
		if calls.Add(1) == 1 {
			<-gate
			panic("unexpected payload")
		}
		return []string{"funny joke"}, nil
	}
	e := newEnv(t, src)
	close(gate)
	require.True(t, e.settle().Crashed)

	rec := e.do(http.MethodGet, "/jokes?v=0", nil, true)
	require.Contains(t, rec.Body.String(), "An unexpected error has occurred")

	rec = e.do(http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "An unexpected error has occurred")

	snap := e.settle()
	require.False(t, snap.Crashed)
	require.Equal(t, []string{"funny joke"}, snap.Display.Texts)
}

func TestViewer_NoViewerMiddleware(t *testing.T) {
	t.Parallel()

	client := query.NewClient()
	t.Cleanup(func() { _ = client.Close() })
	registry := viewer.NewRegistry(client, sources("funny joke"))
	t.Cleanup(func() { _ = registry.Close() })

	app := jokeviewer.New(
		jokeviewer.WithErrorHandler(handlers.ErrorHandler),
		jokeviewer.WithHandlers(handlers.NewViewer(registry, 3)),
	)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Internal Server Error","status":500}`, rec.Body.String())
	require.Zero(t, registry.Len())
}
