// Package runner executes httpcall job files.
//
// For each request it resolves placeholders, builds a RequestSpec, hands it to
// http.BuildRequest and http.Execute, then drains and closes the response and
// applies the request's checks and captures. Requests run sequentially so that
// captures from one request are available to the next.
package runner
