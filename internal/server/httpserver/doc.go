// Package httpserver provides the HTTP/HTTPS host for retire-go.
//
// The Server implements retire.Host and retire.FaultSource: StopAccepting
// disables keep-alives and closes the listeners while in-flight requests
// drain, and handler panics or listener failures are reported to the
// registered fault callbacks.
//
// Middleware is composed with Chain. The router wires business routes
// through the retirement controller's request interceptor and keeps
// /health, /ready, /metrics and /admin out of the request count.
package httpserver
