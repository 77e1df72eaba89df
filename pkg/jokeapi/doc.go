// Package jokeapi is a client for the JokeAPI v2 service.
//
// Every request asks for single-part jokes with safe mode on and the
// nsfw, religious, political, racist, sexist and explicit flags excluded:
//
//	c := jokeapi.New(jokeapi.WithAmount(10), jokeapi.WithLang("en"))
//	texts, err := c.Jokes(ctx)
package jokeapi
