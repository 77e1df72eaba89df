// Package i18n resolves user interface strings for the supported UI locales.
//
// Translations are keyed by language, namespace and a dotted key, loaded
// from {lang}/{namespace}.yaml files:
//
//	tr, err := i18n.New(i18n.WithYAMLDir(os.DirFS("locales")))
//	tr.T("ru", "ui", "title")
//	tr.Tn("ru", "ui", "jokes-loading", 10) // picks one/few/many
//
// Lookups fall back from "ru-RU" to "ru" and then to the default language.
// Unknown keys come back unchanged. [MatchLanguage] chooses a locale from an
// Accept-Language header using golang.org/x/text/language.
package i18n
