package htmx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/jokeviewer/pkg/htmx"
)

func TestIsHTMX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"htmx request", "true", true},
		{"missing header", "", false},
		{"false value", "false", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(htmx.HeaderHXRequest, tt.header)
			}
			assert.Equal(t, tt.want, htmx.IsHTMX(req))
		})
	}
}

func TestConfig_ApplyHeaders(t *testing.T) {
	t.Parallel()

	t.Run("sets configured headers", func(t *testing.T) {
		t.Parallel()

		cfg := htmx.NewConfig(
			htmx.WithRetarget("#content"),
			htmx.WithReswap(htmx.SwapOuterHTML),
			htmx.WithTrigger("a"),
			htmx.WithTrigger("b"),
		)
		rec := httptest.NewRecorder()
		cfg.ApplyHeaders(rec)

		h := rec.Header()
		assert.Equal(t, "#content", h.Get(htmx.HeaderHXRetarget))
		assert.Equal(t, "outerHTML", h.Get(htmx.HeaderHXReswap))
		assert.Equal(t, "a, b", h.Get(htmx.HeaderHXTrigger))
	})

	t.Run("empty config writes nothing", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		htmx.NewConfig().ApplyHeaders(rec)
		assert.Empty(t, rec.Header())

		var nilCfg *htmx.Config
		nilCfg.ApplyHeaders(rec)
		assert.Empty(t, rec.Header())
	})
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	t.Run("htmx gets HX-Redirect", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/language", nil)
		req.Header.Set(htmx.HeaderHXRequest, "true")
		rec := httptest.NewRecorder()

		htmx.Redirect(rec, req, "/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(htmx.HeaderHXRedirect))
	})

	t.Run("form post gets see other", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/language", nil)
		rec := httptest.NewRecorder()

		htmx.Redirect(rec, req, "/")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})
}
