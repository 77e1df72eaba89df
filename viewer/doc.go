// Package viewer is the core of the joke viewer: three request stages (jokes,
// language catalog, translation), a pure display reconciler, a language
// selection controller and the orchestrator that ties them to one event loop
// per viewer.
//
// Each [Orchestrator] owns a [loop.Loop]. Stage state lives on the loop, so
// it is never touched concurrently. Network calls run on their own goroutines
// and post their results back; results for a request key that is no longer
// current are cached but not applied. Every stage change recomputes the
// [Display] with [Reconcile] and publishes a new [Snapshot] that surfaces
// read without entering the loop.
//
// The [Registry] keeps one orchestrator per browser session and stops idle
// ones.
package viewer
