package views

import "embed"

// Static holds the stylesheet served under /static/.
//
//go:embed static
var Static embed.FS
