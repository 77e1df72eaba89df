// Package htmx holds the htmx header names and response helpers used by the
// web surface.
//
// Handlers detect htmx requests with [IsHTMX] and answer them with partial
// fragments. Render options set response headers, for example to swap an
// error into the app region whatever element issued the request:
//
//	c.RenderPartial(code, views.ErrorPage(c), views.ErrorRegion(c),
//	    htmx.WithRetarget("#app"),
//	    htmx.WithReswap(htmx.SwapOuterHTML),
//	)
//
// [Redirect] answers htmx requests with HX-Redirect and plain form posts with
// 303 See Other.
package htmx
