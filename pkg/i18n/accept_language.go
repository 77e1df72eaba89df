package i18n

import (
	"golang.org/x/text/language"
)

// maxAcceptLanguage bounds the header length handed to the parser.
const maxAcceptLanguage = 4096

// MatchLanguage picks the best of available for an Accept-Language header.
// It returns the first available language when nothing matches.
func MatchLanguage(header string, available []string) string {
	if len(available) == 0 {
		return ""
	}
	if len(header) > maxAcceptLanguage {
		header = header[:maxAcceptLanguage]
	}

	tags := make([]language.Tag, 0, len(available))
	for _, a := range available {
		tags = append(tags, language.Make(a))
	}

	desired, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(desired) == 0 {
		return available[0]
	}

	_, idx, conf := language.NewMatcher(tags).Match(desired...)
	if conf == language.No {
		return available[0]
	}
	return available[idx]
}
