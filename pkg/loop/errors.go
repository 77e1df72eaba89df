package loop

import "errors"

// ErrClosed is returned when work is submitted to a closed loop.
var ErrClosed = errors.New("loop: closed")
