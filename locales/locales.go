// Package locales embeds the UI string tables.
package locales

import (
	"embed"

	"github.com/dmitrymomot/jokeviewer/pkg/i18n"
)

// Namespace is the namespace of every UI string.
const Namespace = "ui"

//go:embed en ru
var files embed.FS

// New loads the embedded tables. English is the default language.
func New(opts ...i18n.Option) (*i18n.I18n, error) {
	opts = append([]i18n.Option{
		i18n.WithDefaultLanguage("en"),
		i18n.WithYAMLDir(files),
	}, opts...)
	return i18n.New(opts...)
}
