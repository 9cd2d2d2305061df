// Package logger provides structured logging for the Cortex client core.
package logger

import (
	"context"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// Context keys for fields this client attaches to log entries automatically
// when present on the context (spec.md §4.8).
const (
	// ContextKeySessionID identifies the Cortex session a log entry concerns.
	ContextKeySessionID contextKey = "session_id"

	// ContextKeyHeadsetID identifies the headset a log entry concerns.
	ContextKeyHeadsetID contextKey = "headset_id"

	// ContextKeyStream identifies the data stream (eeg, mot, pow, ...) a log
	// entry concerns.
	ContextKeyStream contextKey = "stream"

	// ContextKeyMethod identifies the originating JSON-RPC method.
	ContextKeyMethod contextKey = "method"

	// ContextKeyRequestID identifies the JSON-RPC request id.
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeyCorrelationID is used for distributed tracing across a CLI
	// invocation or a long-lived resilient client session.
	ContextKeyCorrelationID contextKey = "correlation_id"

	// ContextKeyEnvironment identifies the deployment environment.
	ContextKeyEnvironment contextKey = "environment"
)

// allContextKeys lists all context keys that should be extracted for logging.
var allContextKeys = []contextKey{
	ContextKeySessionID,
	ContextKeyHeadsetID,
	ContextKeyStream,
	ContextKeyMethod,
	ContextKeyRequestID,
	ContextKeyCorrelationID,
	ContextKeyEnvironment,
}

// WithSessionID returns a new context with the session ID set.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// WithHeadsetID returns a new context with the headset ID set.
func WithHeadsetID(ctx context.Context, headsetID string) context.Context {
	return context.WithValue(ctx, ContextKeyHeadsetID, headsetID)
}

// WithStream returns a new context with the stream kind set.
func WithStream(ctx context.Context, stream string) context.Context {
	return context.WithValue(ctx, ContextKeyStream, stream)
}

// WithMethod returns a new context with the originating RPC method set.
func WithMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, ContextKeyMethod, method)
}

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// WithCorrelationID returns a new context with the correlation ID set.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ContextKeyCorrelationID, correlationID)
}

// WithEnvironment returns a new context with the environment set.
func WithEnvironment(ctx context.Context, environment string) context.Context {
	return context.WithValue(ctx, ContextKeyEnvironment, environment)
}

// LoggingFields holds all standard logging context fields.
type LoggingFields struct {
	SessionID     string
	HeadsetID     string
	Stream        string
	Method        string
	RequestID     string
	CorrelationID string
	Environment   string
}

// WithLoggingContext returns a new context with multiple logging fields set
// at once. Only non-empty values are set.
func WithLoggingContext(ctx context.Context, fields *LoggingFields) context.Context {
	if fields == nil {
		return ctx
	}
	if fields.SessionID != "" {
		ctx = WithSessionID(ctx, fields.SessionID)
	}
	if fields.HeadsetID != "" {
		ctx = WithHeadsetID(ctx, fields.HeadsetID)
	}
	if fields.Stream != "" {
		ctx = WithStream(ctx, fields.Stream)
	}
	if fields.Method != "" {
		ctx = WithMethod(ctx, fields.Method)
	}
	if fields.RequestID != "" {
		ctx = WithRequestID(ctx, fields.RequestID)
	}
	if fields.CorrelationID != "" {
		ctx = WithCorrelationID(ctx, fields.CorrelationID)
	}
	if fields.Environment != "" {
		ctx = WithEnvironment(ctx, fields.Environment)
	}
	return ctx
}

// ExtractLoggingFields extracts all logging fields from a context.
func ExtractLoggingFields(ctx context.Context) LoggingFields {
	fields := LoggingFields{}
	if v := ctx.Value(ContextKeySessionID); v != nil {
		fields.SessionID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyHeadsetID); v != nil {
		fields.HeadsetID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyStream); v != nil {
		fields.Stream, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyMethod); v != nil {
		fields.Method, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyRequestID); v != nil {
		fields.RequestID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyCorrelationID); v != nil {
		fields.CorrelationID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyEnvironment); v != nil {
		fields.Environment, _ = v.(string)
	}
	return fields
}
