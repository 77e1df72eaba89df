// Package views renders viewer snapshots as HTML for htmx.
//
// Components are templ.Component values built with templ.ComponentFunc.
// App is the swappable region (id "app"); every mutation endpoint answers
// with it, and a busy App polls GET /jokes?v=<version> until the snapshot
// settles.
package views
