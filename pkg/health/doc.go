// Package health serves liveness and readiness probes.
//
// Liveness only reports that the process runs. Readiness probes the joke
// source as a critical dependency and the translation service as an optional
// one: when translation is down the service is degraded but still ready,
// because untranslated jokes remain viewable.
//
//	mux.Get("/health/ready", health.ReadinessHandler(
//	    health.Checks{"jokeapi": jokes.Healthcheck()},
//	    health.WithOptional(health.Checks{"deepl": deepl.Healthcheck()}),
//	    health.WithTimeout(3*time.Second),
//	))
package health
