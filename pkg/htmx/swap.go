package htmx

// SwapStrategy is an hx-swap value.
type SwapStrategy string

// SwapOuterHTML replaces the target element itself.
const SwapOuterHTML SwapStrategy = "outerHTML"
