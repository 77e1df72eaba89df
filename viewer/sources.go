package viewer

import (
	"context"

	"github.com/dmitrymomot/jokeviewer/pkg/deepl"
	"github.com/dmitrymomot/jokeviewer/pkg/jokeapi"
	"github.com/dmitrymomot/jokeviewer/pkg/sanitizer"
)

// Sources are the remote calls behind the three stages.
type Sources struct {
	// Jokes returns one batch of joke texts in the source language.
	Jokes func(ctx context.Context) ([]string, error)
	// Languages returns every target language, source language included.
	Languages func(ctx context.Context) ([]Language, error)
	// Translate returns texts translated into target, same length and order.
	Translate func(ctx context.Context, texts []string, target string) ([]string, error)
}

// RemoteSources wires the JokeAPI and DeepL clients. Joke and translated
// texts are reduced to plain text; empty jokes are dropped.
func RemoteSources(jokes *jokeapi.Client, translator *deepl.Client) Sources {
	return Sources{
		Jokes: func(ctx context.Context) ([]string, error) {
			texts, err := jokes.Jokes(ctx)
			if err != nil {
				return nil, err
			}
			return sanitizer.StripAll(texts), nil
		},
		Languages: func(ctx context.Context) ([]Language, error) {
			langs, err := translator.Languages(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]Language, len(langs))
			for i, l := range langs {
				out[i] = Language{Code: l.Code, Name: l.Name}
			}
			return out, nil
		},
		Translate: func(ctx context.Context, texts []string, target string) ([]string, error) {
			out, err := translator.Translate(ctx, texts, target)
			if err != nil {
				return nil, err
			}
			for i := range out {
				out[i] = sanitizer.StripHTML(out[i])
			}
			return out, nil
		},
	}
}
