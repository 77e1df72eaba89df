package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// StripHTML reduces s to plain text. Markup is removed (script and style
// bodies included), entities are decoded and surrounding whitespace is
// trimmed. The result must still be escaped by whatever renders it.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	initPolicies()
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// StripAll applies StripHTML to every element and drops the ones that end up
// empty.
func StripAll(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if clean := StripHTML(t); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
