package i18n

import "strings"

// PluralRule maps a count to a CLDR plural category.
type PluralRule func(n int) string

// CLDR plural categories.
const (
	PluralZero  = "zero"
	PluralOne   = "one"
	PluralFew   = "few"
	PluralMany  = "many"
	PluralOther = "other"
)

// EnglishPluralRule: one for ±1, zero for 0, other otherwise.
var EnglishPluralRule PluralRule = func(n int) string {
	switch abs(n) {
	case 0:
		return PluralZero
	case 1:
		return PluralOne
	}
	return PluralOther
}

// SlavicPluralRule covers Russian, Ukrainian, Polish and similar languages.
var SlavicPluralRule PluralRule = func(n int) string {
	n = abs(n)
	if n == 0 {
		return PluralZero
	}
	mod10, mod100 := n%10, n%100
	switch {
	case mod10 == 1 && mod100 != 11:
		return PluralOne
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return PluralFew
	}
	return PluralMany
}

// GermanicPluralRule: one for ±1, other otherwise.
var GermanicPluralRule PluralRule = func(n int) string {
	if abs(n) == 1 {
		return PluralOne
	}
	return PluralOther
}

// InvariantPluralRule is for languages without plural forms.
var InvariantPluralRule PluralRule = func(int) string {
	return PluralOther
}

// PluralRuleFor picks a rule by the ISO 639-1 prefix of lang.
func PluralRuleFor(lang string) PluralRule {
	switch strings.ToLower(baseLanguage(lang)) {
	case "en":
		return EnglishPluralRule
	case "ru", "uk", "be", "pl", "cs", "sk", "hr", "sr", "bg":
		return SlavicPluralRule
	case "ja", "zh", "ko", "th", "vi", "id":
		return InvariantPluralRule
	}
	return GermanicPluralRule
}

func pluralFallbacks(form string) []string {
	switch form {
	case PluralOther:
		return nil
	case PluralFew:
		return []string{PluralMany, PluralOther}
	}
	return []string{PluralOther}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
