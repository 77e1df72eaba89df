// Package sanitizer turns untrusted remote text into plain text using the
// bluemonday strict policy.
package sanitizer
