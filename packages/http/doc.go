// Package http turns a declarative RequestSpec into a ConcreteRequest and executes it.
//
//   - BuildRequest maps a spec to a request: method dispatch, query string, entity
//   - Execute sends a ConcreteRequest through any Doer and reports progress lines
//   - AppendParamsToURL, EncodeForm and ParamsToString do the form encoding
//   - Client is a configurable Doer built on net/http
//
// Retries, response validation and credential handling belong to callers.
package http
