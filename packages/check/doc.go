// Package check validates a received response against a request's expectations:
// accepted status code ranges, expected content and an optional JSON schema.
package check
