package i18n

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DefaultLang is used when no default language is configured.
const DefaultLang = "en"

// M holds placeholder values.
type M = map[string]any

// I18n resolves UI strings by language, namespace and dotted key.
// It is immutable after New and safe for concurrent use.
type I18n struct {
	// keyed by "lang:namespace:key.path"
	translations map[string]string
	pluralRules  map[string]PluralRule
	onMissing    func(lang, namespace, key string)
	defaultLang  string
	languages    []string
}

// Option configures an I18n during construction.
type Option func(*I18n) error

// New creates an I18n from options.
func New(opts ...Option) (*I18n, error) {
	i := &I18n{
		translations: make(map[string]string),
		pluralRules:  make(map[string]PluralRule),
		defaultLang:  DefaultLang,
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, fmt.Errorf("i18n: apply option: %w", err)
		}
	}
	i.languages = i.collectLanguages()
	return i, nil
}

// WithDefaultLanguage sets the fallback language.
func WithDefaultLanguage(lang string) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		i.defaultLang = lang
		return nil
	}
}

// WithTranslations registers a nested map of strings for one language and
// namespace.
func WithTranslations(lang, namespace string, translations map[string]any) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		if namespace == "" {
			return ErrEmptyNamespace
		}
		i.add(lang, namespace, translations)
		return nil
	}
}

// WithPluralRule overrides the plural rule of a language.
func WithPluralRule(lang string, rule PluralRule) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		if rule == nil {
			return ErrNilPluralRule
		}
		i.pluralRules[lang] = rule
		return nil
	}
}

// WithMissingKeyHandler is called whenever a key resolves in no language.
func WithMissingKeyHandler(fn func(lang, namespace, key string)) Option {
	return func(i *I18n) error {
		i.onMissing = fn
		return nil
	}
}

// T returns the translation of key, trying lang, its base language and the
// default language in turn. Unknown keys are returned as is.
func (i *I18n) T(lang, namespace, key string, placeholders ...M) string {
	for _, l := range i.chain(lang) {
		if s, ok := i.translations[buildKey(l, namespace, key)]; ok {
			return ReplacePlaceholders(s, merge(nil, placeholders))
		}
	}
	i.missing(lang, namespace, key)
	return key
}

// Tn returns the plural form of key for n. The count is available to the
// template as {{count}}.
func (i *I18n) Tn(lang, namespace, key string, n int, placeholders ...M) string {
	form := i.rule(lang)(n)
	for _, l := range i.chain(lang) {
		for _, f := range append([]string{form}, pluralFallbacks(form)...) {
			if s, ok := i.translations[buildKey(l, namespace, key+"."+f)]; ok {
				return ReplacePlaceholders(s, merge(M{"count": n}, placeholders))
			}
		}
	}
	i.missing(lang, namespace, key)
	return key
}

// Languages returns the loaded languages, default first.
func (i *I18n) Languages() []string {
	return slices.Clone(i.languages)
}

// DefaultLanguage returns the fallback language.
func (i *I18n) DefaultLanguage() string {
	return i.defaultLang
}

func (i *I18n) add(lang, namespace string, translations map[string]any) {
	for k, v := range flatten(translations, "") {
		i.translations[buildKey(lang, namespace, k)] = v
	}
	if _, ok := i.pluralRules[lang]; !ok {
		i.pluralRules[lang] = PluralRuleFor(lang)
	}
}

func (i *I18n) chain(lang string) []string {
	out := []string{lang}
	if base := baseLanguage(lang); base != lang {
		out = append(out, base)
	}
	if !slices.Contains(out, i.defaultLang) {
		out = append(out, i.defaultLang)
	}
	return out
}

func (i *I18n) rule(lang string) PluralRule {
	for _, l := range i.chain(lang) {
		if r, ok := i.pluralRules[l]; ok {
			return r
		}
	}
	return PluralRuleFor(lang)
}

func (i *I18n) missing(lang, namespace, key string) {
	if i.onMissing != nil {
		i.onMissing(lang, namespace, key)
	}
}

func (i *I18n) collectLanguages() []string {
	seen := map[string]bool{i.defaultLang: true}
	var others []string
	for k := range i.translations {
		lang, _, _ := strings.Cut(k, ":")
		if !seen[lang] {
			seen[lang] = true
			others = append(others, lang)
		}
	}
	slices.Sort(others)
	return append([]string{i.defaultLang}, others...)
}

func buildKey(lang, namespace, key string) string {
	return lang + ":" + namespace + ":" + key
}

func flatten(data map[string]any, prefix string) map[string]string {
	out := make(map[string]string)
	for k, v := range data {
		if prefix != "" {
			k = prefix + "." + k
		}
		switch v := v.(type) {
		case string:
			out[k] = v
		case map[string]any:
			maps.Copy(out, flatten(v, k))
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

func merge(base M, extra []M) M {
	if base == nil && len(extra) == 0 {
		return nil
	}
	out := make(M, len(base))
	maps.Copy(out, base)
	for _, m := range extra {
		maps.Copy(out, m)
	}
	return out
}

// baseLanguage strips the region: "en-US" becomes "en".
func baseLanguage(lang string) string {
	if i := strings.IndexByte(lang, '-'); i > 0 {
		return lang[:i]
	}
	return lang
}
