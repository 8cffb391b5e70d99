// Package logger provides structured logging for retire-go.
//
// This package wraps log/slog behind a small Logger interface:
//
//   - JSON output by default, text for local development
//   - Process-wide level that can be changed at runtime (config reload)
//   - Context helpers carrying the logger, request ID and retirement ID
//   - A discard logger for tests and library defaults
//
// Usage:
//
//	log, _ := logger.New(logger.Config{Level: "info", Format: "json"})
//	log.With("component", "retire").Info("retirement scheduled", "deferral", d)
package logger
