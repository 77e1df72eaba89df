package viewer

import (
	"slices"
	"strings"
)

// DefaultSourceLanguage is the catalog code of the language jokes are
// fetched in.
const DefaultSourceLanguage = "EN"

// Joke is a single joke as plain text.
type Joke struct {
	Text string `json:"text"`
}

// JokeBatch is one fetch result. ID is unique per successful fetch and keys
// the translation of the batch.
type JokeBatch struct {
	ID    string `json:"id"`
	Jokes []Joke `json:"jokes"`
}

// Texts returns the joke texts in display order.
func (b JokeBatch) Texts() []string {
	out := make([]string, len(b.Jokes))
	for i, j := range b.Jokes {
		out[i] = j.Text
	}
	return out
}

// Language is a translation target.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// filterLanguages removes the source language and duplicate codes.
func filterLanguages(langs []Language, source string) []Language {
	out := make([]Language, 0, len(langs))
	for _, l := range langs {
		if l.Code == "" || strings.EqualFold(l.Code, source) {
			continue
		}
		if slices.ContainsFunc(out, func(o Language) bool { return strings.EqualFold(o.Code, l.Code) }) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Kind is the primary display state.
type Kind int

const (
	KindLoading Kind = iota
	KindUnavailable
	KindReady
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindUnavailable:
		return "unavailable"
	case KindReady:
		return "ready"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Display is what the joke region shows. Texts is kept while Loading so the
// previous content can be restored without flicker.
type Display struct {
	Texts              []string `json:"texts"`
	Kind               Kind     `json:"kind"`
	TranslationWarning bool     `json:"translation_warning"`
}

func (d Display) equal(o Display) bool {
	return d.Kind == o.Kind &&
		d.TranslationWarning == o.TranslationWarning &&
		slices.Equal(d.Texts, o.Texts)
}

// Catalog is the state of the language selector.
type Catalog struct {
	Options     []Language `json:"options"`
	Loading     bool       `json:"loading"`
	Unavailable bool       `json:"unavailable"`
}

// Snapshot is an immutable view of an orchestrator. Version increases with
// every published change.
type Snapshot struct {
	Language     string  `json:"language"`
	BatchID      string  `json:"batch_id,omitempty"`
	Catalog      Catalog `json:"catalog"`
	Display      Display `json:"display"`
	Version      uint64  `json:"version"`
	Translating  bool    `json:"translating"`
	JokesLoading bool    `json:"jokes_loading"`
	CanFetchMore bool    `json:"can_fetch_more"`
	CanReset     bool    `json:"can_reset"`
	Crashed      bool    `json:"crashed"`
}

// Busy reports whether any request is still in flight.
func (s Snapshot) Busy() bool {
	return s.Translating || s.JokesLoading || s.Catalog.Loading
}

// LanguageName returns the display name of the selected language.
func (s Snapshot) LanguageName() string {
	for _, l := range s.Catalog.Options {
		if l.Code == s.Language {
			return l.Name
		}
	}
	return s.Language
}

func (s Snapshot) equal(o Snapshot) bool {
	return s.Language == o.Language &&
		s.BatchID == o.BatchID &&
		s.Display.equal(o.Display) &&
		s.Catalog.Loading == o.Catalog.Loading &&
		s.Catalog.Unavailable == o.Catalog.Unavailable &&
		slices.Equal(s.Catalog.Options, o.Catalog.Options) &&
		s.Translating == o.Translating &&
		s.JokesLoading == o.JokesLoading &&
		s.CanFetchMore == o.CanFetchMore &&
		s.CanReset == o.CanReset &&
		s.Crashed == o.Crashed
}
