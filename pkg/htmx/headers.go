package htmx

// Response headers.
const (
	HeaderHXRedirect = "HX-Redirect"
	HeaderHXReswap   = "HX-Reswap"
	HeaderHXRetarget = "HX-Retarget"
	HeaderHXTrigger  = "HX-Trigger"
)

// HeaderHXRequest is set by htmx on every request it issues.
const HeaderHXRequest = "HX-Request"
