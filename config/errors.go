package config

import "errors"

var (
	// ErrInvalid wraps every validation problem.
	ErrInvalid = errors.New("config: invalid")

	// ErrUnknownKey is returned when the file has keys no field accepts.
	ErrUnknownKey = errors.New("config: unknown key")
)
