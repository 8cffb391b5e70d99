// Package handler provides HTTP request handlers for retire-go.
//
// This package contains handlers for all HTTP endpoints:
//
//   - health.go: liveness and readiness (not ready once retiring)
//   - retire.go: retirement status and on-demand retirement
//   - hello.go: the sample application endpoint
//
// All handlers follow a consistent pattern:
//
//   - Parse and validate request
//   - Call the controller
//   - Format and return response in the standard envelope
//   - Map domain error codes to HTTP status codes
package handler
