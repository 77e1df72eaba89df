package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/jokeviewer/internal"
	"github.com/dmitrymomot/jokeviewer/pkg/cookie"
)

func TestExtractor(t *testing.T) {
	t.Parallel()

	const secret = "0123456789abcdef0123456789abcdef"

	extract := func(t *testing.T, e internal.Extractor, req *http.Request) (string, bool) {
		t.Helper()

		var (
			got string
			ok  bool
		)
		app := internal.New(
			internal.WithCookieOptions(cookie.WithSecret(secret)),
			internal.WithHandlers(routes(func(r internal.Router) {
				r.GET("/", func(c internal.Context) error {
					got, ok = e.Extract(c)
					return c.NoContent(http.StatusNoContent)
				})
			})),
		)
		serve(t, app, req)
		return got, ok
	}

	e := internal.NewExtractor(
		internal.FromQuery("lang"),
		internal.FromCookie("lang"),
		internal.FromHeader("X-Lang"),
	)

	t.Run("first source wins", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/?lang=ru", nil)
		req.AddCookie(&http.Cookie{Name: "lang", Value: "de"})
		got, ok := extract(t, e, req)
		require.True(t, ok)
		require.Equal(t, "ru", got)
	})

	t.Run("falls through empty sources", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/?lang=", nil)
		req.Header.Set("X-Lang", "en")
		got, ok := extract(t, e, req)
		require.True(t, ok)
		require.Equal(t, "en", got)
	})

	t.Run("miss", func(t *testing.T) {
		t.Parallel()

		_, ok := extract(t, e, httptest.NewRequest(http.MethodGet, "/", nil))
		require.False(t, ok)
	})

	t.Run("signed cookie", func(t *testing.T) {
		t.Parallel()

		m := cookie.New(cookie.WithSecret(secret))
		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "viewer", "abc", 60))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
		got, ok := extract(t, internal.NewExtractor(internal.FromCookieSigned("viewer")), req)
		require.True(t, ok)
		require.Equal(t, "abc", got)

		tampered := httptest.NewRequest(http.MethodGet, "/", nil)
		tampered.AddCookie(&http.Cookie{Name: "viewer", Value: "YWJj.bm9wZQ"})
		_, ok = extract(t, internal.NewExtractor(internal.FromCookieSigned("viewer")), tampered)
		require.False(t, ok)
	})
}
