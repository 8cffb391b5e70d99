// Package main provides the entry point for retire-server.
//
// retire-server is a reference host for the retirement controller. It
// serves a small business API, counts requests toward a threshold and
// retires itself once the threshold is crossed, a fault is observed, or an
// operator asks for it:
//
//   - HTTP/HTTPS business routes, counted by the controller
//   - /health and /ready probes; /ready fails once retirement starts
//   - Admin API (GET/POST /admin/v1/retire), guarded by an allowlist and token
//   - Prometheus metrics at /metrics
//   - Local Unix socket for management access
//
// Usage:
//
//	retire-server [flags]
//	retire-server --config /path/to/config.yaml
//
// When RETIRE_SUPERVISOR_SOCKET is set the server announces its departure
// to the supervisor before exiting, so a replacement can start early.
package main
