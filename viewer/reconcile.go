package viewer

import "github.com/dmitrymomot/jokeviewer/pkg/query"

// Inputs are the stage states a Display is derived from.
type Inputs struct {
	Jokes       query.State[JokeBatch]
	Translation query.State[[]string]
	Language    string
}

// TranslationKey identifies the translation of batch into lang. It is empty
// when no translation applies: no language or an empty batch.
func TranslationKey(batch JokeBatch, lang string) string {
	if lang == "" || len(batch.Jokes) == 0 {
		return ""
	}
	return "translate|" + batch.ID + "|" + lang
}

// Reconcile derives the next Display from prev and the stage states.
//
// While a translation is loading, or jokes are reloading with a language
// selected, the previous content is kept. A loading translation keeps prev
// as a whole, so the primary state does not change until it settles.
// Otherwise the content is the translation when it belongs to the current
// batch and language, and the original jokes when it does not.
func Reconcile(prev Display, in Inputs) Display {
	key := TranslationKey(in.Jokes.Data, in.Language)
	tr := in.Translation

	var texts []string
	switch {
	case tr.Fetching || (in.Jokes.Fetching && in.Language != ""):
		texts = prev.Texts
	case key != "" && tr.Key == key && tr.HasData && len(tr.Data) == len(in.Jokes.Data.Jokes):
		texts = tr.Data
	case in.Jokes.HasData:
		texts = in.Jokes.Data.Texts()
	}

	switch {
	case in.Jokes.Fetching:
		return Display{Kind: KindLoading, Texts: texts}
	case in.Jokes.Err != nil:
		return Display{Kind: KindUnavailable}
	case in.Jokes.HasData && len(in.Jokes.Data.Jokes) == 0:
		return Display{Kind: KindUnavailable}
	case tr.Fetching:
		return prev
	case len(texts) == 0:
		return Display{Kind: KindUnavailable}
	}
	return Display{
		Kind:               KindReady,
		Texts:              texts,
		TranslationWarning: key != "" && tr.Key == key && tr.Err != nil,
	}
}
