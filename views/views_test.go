package views_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/jokeviewer/locales"
	"github.com/dmitrymomot/jokeviewer/pkg/i18n"
	"github.com/dmitrymomot/jokeviewer/viewer"
	"github.com/dmitrymomot/jokeviewer/views"
)

func translator(t *testing.T, lang string) *i18n.Translator {
	t.Helper()

	svc, err := locales.New()
	require.NoError(t, err)
	return i18n.NewTranslator(svc, lang, locales.Namespace)
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

var catalog = viewer.Catalog{Options: []viewer.Language{
	{Code: "DE", Name: "German"},
	{Code: "KL", Name: "Klingon"},
}}

func ready(texts ...string) viewer.Snapshot {
	return viewer.Snapshot{
		Catalog:      catalog,
		Display:      viewer.Display{Kind: viewer.KindReady, Texts: texts},
		CanFetchMore: true,
		Version:      4,
	}
}

func TestJokes(t *testing.T) {
	t.Parallel()

	tr := translator(t, "en")

	t.Run("one joke", func(t *testing.T) {
		t.Parallel()

		out := render(t, views.Jokes(tr, viewer.Display{Kind: viewer.KindReady, Texts: []string{"funny joke"}}, 10))
		require.Contains(t, out, `<ul class="jokes" aria-label="List of jokes"><li>funny joke</li></ul>`)
		require.Equal(t, 1, strings.Count(out, "<li>"))
		require.Contains(t, out, "1 joke<")
		require.NotContains(t, out, `role="alert"`)
	})

	t.Run("text is escaped", func(t *testing.T) {
		t.Parallel()

		out := render(t, views.Jokes(tr, viewer.Display{Kind: viewer.KindReady, Texts: []string{"<b>x</b> & y"}}, 10))
		require.Contains(t, out, "<li>&lt;b&gt;x&lt;/b&gt; &amp; y</li>")
	})

	t.Run("unavailable", func(t *testing.T) {
		t.Parallel()

		out := render(t, views.Jokes(tr, viewer.Display{Kind: viewer.KindUnavailable}, 10))
		require.Contains(t, out, "Jokes could not be retrieved")
		require.NotContains(t, out, "<ul")
	})

	t.Run("translation warning above list", func(t *testing.T) {
		t.Parallel()

		out := render(t, views.Jokes(tr, viewer.Display{
			Kind:               viewer.KindReady,
			Texts:              []string{"a", "b"},
			TranslationWarning: true,
		}, 10))
		warn := strings.Index(out, "Translation service is unavailable")
		list := strings.Index(out, "<ul")
		require.GreaterOrEqual(t, warn, 0)
		require.Less(t, warn, list)
	})

	t.Run("loading placeholders", func(t *testing.T) {
		t.Parallel()

		out := render(t, views.Jokes(tr, viewer.Display{Kind: viewer.KindLoading, Texts: []string{"old"}}, 3))
		require.Equal(t, 3, strings.Count(out, `<li class="placeholder-glow">`))
		require.Contains(t, out, `aria-hidden="true"`)
		require.Contains(t, out, `<span role="status" class="visually-hidden">Loading jokes...</span>`)
		require.NotContains(t, out, "old")
	})
}

func TestLanguageSelect(t *testing.T) {
	t.Parallel()

	tr := translator(t, "en")

	t.Run("options and selection", func(t *testing.T) {
		t.Parallel()

		snap := ready("x")
		snap.Language = "KL"
		out := render(t, views.LanguageSelect(tr, snap))
		require.Contains(t, out, `<option value="DE">German</option>`)
		require.Contains(t, out, `<option value="KL" selected>Klingon</option>`)
		require.Contains(t, out, `hx-post="/language"`)
		require.NotContains(t, out, "aria-busy")
	})

	t.Run("busy while loading", func(t *testing.T) {
		t.Parallel()

		snap := ready("x")
		snap.Catalog = viewer.Catalog{Loading: true}
		out := render(t, views.LanguageSelect(tr, snap))
		require.Contains(t, out, `disabled aria-busy="true"`)
		require.Contains(t, out, "<select")
	})

	t.Run("unavailable replaces the control", func(t *testing.T) {
		t.Parallel()

		snap := ready("x")
		snap.Catalog = viewer.Catalog{Unavailable: true}
		out := render(t, views.LanguageSelect(tr, snap))
		require.Contains(t, out, "Translation service is unavailable")
		require.NotContains(t, out, "<select")
	})
}

func TestApp(t *testing.T) {
	t.Parallel()

	tr := translator(t, "en")

	t.Run("settled app does not poll", func(t *testing.T) {
		t.Parallel()

		out := render(t, views.App(tr, ready("x"), 10))
		require.True(t, strings.HasPrefix(out, `<main id="app" class="container">`))
		require.NotContains(t, out, "hx-get")
		require.NotContains(t, out, views.PathReset)
		require.Contains(t, out, `hx-post="/jokes/more"`)
	})

	t.Run("busy app polls with version", func(t *testing.T) {
		t.Parallel()

		snap := ready("x")
		snap.Language = "DE"
		snap.Translating = true
		snap.CanFetchMore = false
		out := render(t, views.App(tr, snap, 10))
		require.Contains(t, out, `hx-get="/jokes?v=4" hx-trigger="load delay:250ms"`)
		require.Contains(t, out, `<span role="status">Translating...</span>`)
		require.Contains(t, out, `class="btn btn-primary" disabled>More jokes`)
		require.NotContains(t, out, views.PathReset)
	})

	t.Run("reset shown for selected language", func(t *testing.T) {
		t.Parallel()

		snap := ready("x")
		snap.Language = "DE"
		snap.CanReset = true
		out := render(t, views.App(tr, snap, 10))
		require.Contains(t, out, `action="/language/reset"`)
		require.Contains(t, out, "Reset to original")
	})

	t.Run("crashed shows error alert", func(t *testing.T) {
		t.Parallel()

		snap := ready("x")
		snap.Crashed = true
		snap.JokesLoading = true
		out := render(t, views.App(tr, snap, 10))
		require.Contains(t, out, "An unexpected error has occurred. Please try again later.")
		require.NotContains(t, out, "hx-get")
		require.NotContains(t, out, "<ul")
	})
}

func TestPage(t *testing.T) {
	t.Parallel()

	out := render(t, views.Page(translator(t, "ru"), ready("шутка"), 10))
	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	require.Contains(t, out, `<html lang="ru">`)
	require.Contains(t, out, "<title>Шутки</title>")
	require.Contains(t, out, "1 шутка")
	require.Contains(t, out, views.HTMXSrc)

	out = render(t, views.ErrorPage(translator(t, "en")))
	require.Contains(t, out, `<main id="app" class="container"><div class="alert alert-warning" role="alert" aria-live="polite">An unexpected error`)
}

func TestStatic(t *testing.T) {
	t.Parallel()

	css, err := views.Static.ReadFile("static/app.css")
	require.NoError(t, err)
	require.Contains(t, string(css), ".visually-hidden")
}
