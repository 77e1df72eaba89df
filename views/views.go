package views

import (
	"context"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/jokeviewer/pkg/htmx"
	"github.com/dmitrymomot/jokeviewer/pkg/i18n"
	"github.com/dmitrymomot/jokeviewer/viewer"
)

// Translator supplies UI strings. *i18n.Translator satisfies it.
type Translator interface {
	T(key string, placeholders ...i18n.M) string
	Tn(key string, n int, placeholders ...i18n.M) string
	Language() string
}

// Routes used by the rendered markup.
const (
	PathJokes    = "/jokes"
	PathMore     = "/jokes/more"
	PathLanguage = "/language"
	PathReset    = "/language/reset"
)

// AppID is the element id of the swappable app region.
const AppID = "app"

// PollDelay is how long htmx waits before re-polling a busy app region.
const PollDelay = "250ms"

// HTMXSrc is where pages load htmx from.
const HTMXSrc = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

func component(fn func(ctx context.Context, m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		fn(ctx, m)
		return m.err
	})
}

// Page is the full HTML document around App.
func Page(tr Translator, snap viewer.Snapshot, amount int) templ.Component {
	return document(tr, App(tr, snap, amount))
}

// ErrorPage is the full HTML document around ErrorRegion.
func ErrorPage(tr Translator) templ.Component {
	return document(tr, ErrorRegion(tr))
}

// ErrorRegion replaces the app region with ErrorAlert.
func ErrorRegion(tr Translator) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<main`)
		m.attr("id", AppID)
		m.raw(` class="container">`)
		m.component(ctx, ErrorAlert(tr))
		m.raw(`</main>`)
	})
}

func document(tr Translator, body templ.Component) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<!DOCTYPE html><html`)
		m.attr("lang", tr.Language())
		m.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		m.text(tr.T("title"))
		m.raw(`</title><link rel="stylesheet" href="/static/app.css"><script defer`)
		m.attr("src", HTMXSrc)
		m.raw(`></script></head><body><h1 class="title">`)
		m.text(tr.T("title"))
		m.raw(`</h1>`)
		m.component(ctx, body)
		m.raw(`</body></html>`)
	})
}

// App renders the swappable region: toolbar and joke list. While anything
// is in flight it re-polls itself with the current snapshot version.
// A crashed orchestrator renders the generic error alert instead.
func App(tr Translator, snap viewer.Snapshot, amount int) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<main`)
		m.attr("id", AppID)
		m.raw(` class="container"`)
		if snap.Busy() && !snap.Crashed {
			m.attr("hx-get", PathJokes+"?v="+strconv.FormatUint(snap.Version, 10))
			m.attr("hx-trigger", "load delay:"+PollDelay)
			m.attr("hx-swap", string(htmx.SwapOuterHTML))
		}
		m.raw(`>`)

		if snap.Crashed {
			m.component(ctx, ErrorAlert(tr))
			m.raw(`</main>`)
			return
		}

		m.raw(`<div class="toolbar"><div>`)
		m.component(ctx, LanguageSelect(tr, snap))
		if snap.Translating {
			m.raw(`<span class="spinner" aria-hidden="true"></span><span role="status">`)
			m.text(tr.T("translating"))
			m.raw(`</span>`)
		}
		m.raw(`</div><div>`)
		if snap.CanReset {
			action(m, PathReset, "btn btn-link", tr.T("reset"), false)
		}
		action(m, PathMore, "btn btn-primary", tr.T("more"), !snap.CanFetchMore)
		m.raw(`</div></div>`)

		m.component(ctx, Jokes(tr, snap.Display, amount))
		m.raw(`</main>`)
	})
}

// action renders a one-button form that works with and without htmx.
func action(m *markup, path, class, label string, disabled bool) {
	m.raw(`<form method="post"`)
	m.attr("action", path)
	m.attr("hx-post", path)
	m.attr("hx-target", "#"+AppID)
	m.attr("hx-swap", string(htmx.SwapOuterHTML))
	m.raw(`><button type="submit"`)
	m.attr("class", class)
	m.flag("disabled", disabled)
	m.raw(`>`)
	m.text(label)
	m.raw(`</button></form>`)
}

// LanguageSelect renders the language selector: busy while the catalog
// loads, an alert instead of the control when the catalog failed or is
// empty.
func LanguageSelect(tr Translator, snap viewer.Snapshot) templ.Component {
	return component(func(_ context.Context, m *markup) {
		cat := snap.Catalog
		if !cat.Loading && cat.Unavailable {
			m.raw(`<div class="alert alert-warning" role="alert" aria-live="polite">`)
			m.text(tr.T("translation-error"))
			m.raw(`</div>`)
			return
		}

		m.raw(`<form method="post" class="language"`)
		m.attr("action", PathLanguage)
		m.attr("hx-post", PathLanguage)
		m.attr("hx-trigger", "change")
		m.attr("hx-target", "#"+AppID)
		m.attr("hx-swap", string(htmx.SwapOuterHTML))
		m.raw(`><select name="lang" aria-label="Select translation" class="form-select"`)
		m.flag("disabled", cat.Loading || snap.Translating)
		if cat.Loading {
			m.raw(` aria-busy="true"`)
		}
		m.raw(`><option value="" disabled hidden`)
		m.flag("selected", snap.Language == "")
		m.raw(`>`)
		m.text(tr.T("select-translation"))
		m.raw(`</option>`)
		for _, l := range cat.Options {
			m.raw(`<option`)
			m.attr("value", l.Code)
			m.flag("selected", l.Code == snap.Language)
			m.raw(`>`)
			m.text(l.Name)
			m.raw(`</option>`)
		}
		m.raw(`</select><noscript><button type="submit" class="btn">OK</button></noscript></form>`)
	})
}

// Jokes renders the joke region for a display state.
func Jokes(tr Translator, d viewer.Display, amount int) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		switch d.Kind {
		case viewer.KindLoading:
			m.component(ctx, JokesLoadingIndicator(tr, amount))
			return
		case viewer.KindUnavailable:
			m.raw(`<div class="alert alert-warning" role="alert">`)
			m.text(tr.T("jokes-error"))
			m.raw(`</div>`)
			return
		}

		if d.TranslationWarning {
			m.raw(`<div class="alert alert-warning" role="alert">`)
			m.text(tr.T("translation-error"))
			m.raw(`</div>`)
		}
		m.raw(`<ul class="jokes" aria-label="List of jokes">`)
		for _, joke := range d.Texts {
			m.raw(`<li>`)
			m.text(joke)
			m.raw(`</li>`)
		}
		m.raw(`</ul><p class="count">`)
		m.text(tr.Tn("jokes-count", len(d.Texts)))
		m.raw(`</p>`)
	})
}

var placeholderPatterns = [][]int{
	{6, 5},
	{2, 7, 2},
	{3, 2, 3, 2},
}

// JokesLoadingIndicator renders one placeholder line per expected joke and a
// visually hidden loading status.
func JokesLoadingIndicator(tr Translator, amount int) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<ul class="jokes placeholders" aria-hidden="true">`)
		for range amount {
			m.raw(`<li class="placeholder-glow">`)
			for i, cols := range placeholderPatterns[rand.IntN(len(placeholderPatterns))] {
				if i > 0 {
					m.raw(" ")
				}
				m.raw(`<span class="placeholder col-`, strconv.Itoa(cols), `"></span>`)
			}
			m.raw(`</li>`)
		}
		m.raw(`</ul><span role="status" class="visually-hidden">`)
		m.text(tr.T("jokes-loading"))
		m.raw(`</span>`)
	})
}

// ErrorAlert is shown when rendering or a handler fails unexpectedly.
func ErrorAlert(tr Translator) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<div class="alert alert-warning" role="alert" aria-live="polite">`)
		m.text(tr.T("unexpected-error"))
		m.raw(` <a href="/">`)
		m.text(tr.T("try-again"))
		m.raw(`</a></div>`)
	})
}
