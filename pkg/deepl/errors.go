package deepl

import "errors"

var (
	// ErrRequest is returned when the API cannot be reached or rejects the request.
	ErrRequest = errors.New("deepl: request failed")

	// ErrDecode is returned when the response body is not valid JSON.
	ErrDecode = errors.New("deepl: invalid response")

	// ErrMismatch is returned when the number of translations differs from
	// the number of submitted texts.
	ErrMismatch = errors.New("deepl: translation count mismatch")
)
