package handlers

import "errors"

// errNoViewer means the ViewerID middleware is not installed.
var errNoViewer = errors.New("handlers: no viewer id in request context")
