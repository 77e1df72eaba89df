package query

import "errors"

// ErrTypeMismatch is returned when a shared request produced a value of a
// different type than the caller expects.
var ErrTypeMismatch = errors.New("query: cached value has unexpected type")

// ErrClosed is returned by requests issued after the client was closed.
var ErrClosed = errors.New("query: client closed")
