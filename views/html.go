package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// markup writes HTML fragments and remembers the first write error.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(parts ...string) {
	for _, p := range parts {
		if m.err != nil {
			return
		}
		_, m.err = io.WriteString(m.w, p)
	}
}

// text writes s HTML-escaped.
func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (m *markup) attr(name, value string) {
	m.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// flag writes a boolean attribute when on.
func (m *markup) flag(name string, on bool) {
	if on {
		m.raw(" ", name)
	}
}

func (m *markup) component(ctx context.Context, c templ.Component) {
	if m.err != nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}
