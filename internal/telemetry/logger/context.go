package logger

import "context"

type contextKey string

const (
	loggerKey       contextKey = "retire.logger"
	requestIDKey    contextKey = "retire.request_id"
	retirementIDKey contextKey = "retire.retirement_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRetirementID adds the ID of the retirement sequence being handled.
func WithRetirementID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, retirementIDKey, id)
}

// RetirementIDFromContext extracts the retirement ID from context.
func RetirementIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(retirementIDKey).(string); ok {
		return id
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger
// with the request and retirement IDs found in the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if reqID := RequestIDFromContext(ctx); reqID != "" {
		l = l.With("request_id", reqID)
	}
	if retID := RetirementIDFromContext(ctx); retID != "" {
		l = l.With("retirement_id", retID)
	}

	return l
}
