package middlewares

import (
	"slices"

	"github.com/dmitrymomot/jokeviewer/internal"
	"github.com/dmitrymomot/jokeviewer/pkg/i18n"
)

// LanguageCookie holds the UI language chosen by the visitor.
const LanguageCookie = "lang"

type i18nConfig struct {
	namespace string
	extractor *internal.Extractor
}

// I18nOption configures I18n.
type I18nOption func(*i18nConfig)

// WithI18nNamespace sets the namespace of the context translator.
func WithI18nNamespace(ns string) I18nOption {
	return func(cfg *i18nConfig) {
		cfg.namespace = ns
	}
}

// WithI18nExtractor replaces the language lookup chain.
func WithI18nExtractor(ext internal.Extractor) I18nOption {
	return func(cfg *i18nConfig) {
		cfg.extractor = &ext
	}
}

// FromAcceptLanguage matches the Accept-Language header against available.
func FromAcceptLanguage(available []string) internal.ExtractorSource {
	return func(c internal.Context) (string, bool) {
		header := c.Header("Accept-Language")
		if header == "" {
			return "", false
		}
		return i18n.MatchLanguage(header, available), true
	}
}

// I18n resolves the UI language (cookie, then Accept-Language, then the
// default) and stores a Translator for Context.T.
func I18n(svc *i18n.I18n, opts ...I18nOption) internal.Middleware {
	cfg := &i18nConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	available := svc.Languages()
	ext := internal.NewExtractor(
		internal.FromCookie(LanguageCookie),
		FromAcceptLanguage(available),
	)
	if cfg.extractor != nil {
		ext = *cfg.extractor
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			lang, ok := ext.Extract(c)
			if !ok || !slices.Contains(available, lang) {
				lang = svc.DefaultLanguage()
			}
			c.Set(internal.TranslatorKey{}, i18n.NewTranslator(svc, lang, cfg.namespace))
			return next(c)
		}
	}
}

// GetTranslator returns the request Translator, or nil outside I18n.
func GetTranslator(c internal.Context) *i18n.Translator {
	return internal.ContextValue[*i18n.Translator](c, internal.TranslatorKey{})
}

