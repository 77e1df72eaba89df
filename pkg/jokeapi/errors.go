package jokeapi

import "errors"

var (
	// ErrRequest is returned when the API cannot be reached or reports an error.
	ErrRequest = errors.New("jokeapi: request failed")

	// ErrDecode is returned when the response body is not valid JSON.
	ErrDecode = errors.New("jokeapi: invalid response")
)
