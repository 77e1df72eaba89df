// Package config loads the jokeviewer configuration.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional TOML file, and environment variables.
//
//	[server]
//	address = ":8080"
//	cookie_secret = "at-least-32-bytes-of-random-data!"
//
//	[jokes]
//	amount = 10
//
//	[deepl]
//	auth_key = "..."
//
//	[viewer]
//	idle_ttl = "30m"
//	max_sessions = 10000
//
// Recognized environment variables: JOKEVIEWER_ADDRESS, DEEPL_AUTH_KEY,
// DEEPL_BASE_URL, JOKES_BASE_URL, COOKIE_SECRET, SENTRY_DSN and LOG_LEVEL.
package config
