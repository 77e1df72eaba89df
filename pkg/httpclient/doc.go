// Package httpclient is the shared transport for the remote joke and
// translation APIs: a proxy-aware *http.Client with per-attempt timeouts and
// exponential-backoff retries on network errors, 429 and 5xx responses.
package httpclient
