// Package logger provides structured logging with automatic Cortex token
// redaction.
//
// This package wraps Go's standard log/slog with convenience functions for:
//   - JSON-RPC call/response/error logging
//   - Stream subscription and delivery logging
//   - Automatic cortex token redaction
//   - Contextual logging with request/session tracing
//   - Per-module, level-based verbosity control
//
// All exported functions use the global DefaultLogger which can be
// configured for different output formats and log levels.
package logger

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

var (
	// DefaultLogger is the global structured logger instance.
	// It is safe for concurrent use and initialized with slog.LevelInfo by default.
	DefaultLogger *slog.Logger
)

func init() {
	// Check LOG_LEVEL environment variable
	level := slog.LevelInfo
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		switch strings.ToLower(envLevel) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn", "warning":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	DefaultLogger = slog.New(handler)
}

// SetLevel changes the logging level for all subsequent log operations.
// It replaces the entire logger instance without synchronization, so it is
// not safe to call concurrently with other logging calls.
func SetLevel(level slog.Level) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	DefaultLogger = slog.New(handler)
}

// SetVerbose enables debug-level logging when verbose is true, otherwise sets info-level.
// This is a convenience wrapper around SetLevel for command-line verbose flags.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
	} else {
		SetLevel(slog.LevelInfo)
	}
}

// Info logs an informational message with structured key-value attributes.
func Info(msg string, args ...any) {
	DefaultLogger.Info(msg, args...)
}

// InfoContext logs an informational message with context and structured attributes.
func InfoContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.InfoContext(ctx, msg, args...)
}

// Debug logs a debug-level message with structured attributes.
func Debug(msg string, args ...any) {
	DefaultLogger.Debug(msg, args...)
}

// DebugContext logs a debug message with context and structured attributes.
func DebugContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.DebugContext(ctx, msg, args...)
}

// Warn logs a warning message with structured attributes.
func Warn(msg string, args ...any) {
	DefaultLogger.Warn(msg, args...)
}

// WarnContext logs a warning message with context and structured attributes.
func WarnContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.WarnContext(ctx, msg, args...)
}

// Error logs an error message with structured attributes.
func Error(msg string, args ...any) {
	DefaultLogger.Error(msg, args...)
}

// ErrorContext logs an error message with context and structured attributes.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.ErrorContext(ctx, msg, args...)
}

// RPCCall logs an outbound JSON-RPC request for observability (spec.md §4.8).
// attrs are logged as given; RPCCall does no redaction itself, so callers
// pass request params through RedactSensitiveData first (as Transport.Call
// does).
func RPCCall(method string, requestID uint64, attrs ...any) {
	allAttrs := make([]any, 0, 4+len(attrs))
	allAttrs = append(allAttrs, "method", method, "request_id", requestID)
	allAttrs = append(allAttrs, attrs...)
	Debug("rpc call", allAttrs...)
}

// RPCResponse logs a successful JSON-RPC response.
func RPCResponse(method string, requestID uint64, attrs ...any) {
	allAttrs := make([]any, 0, 4+len(attrs))
	allAttrs = append(allAttrs, "method", method, "request_id", requestID)
	allAttrs = append(allAttrs, attrs...)
	Debug("rpc response", allAttrs...)
}

// RPCError logs a failed JSON-RPC call with its classified error kind.
func RPCError(method string, requestID uint64, err error, attrs ...any) {
	allAttrs := make([]any, 0, 6+len(attrs))
	allAttrs = append(allAttrs, "method", method, "request_id", requestID, "error", err)
	allAttrs = append(allAttrs, attrs...)
	Error("rpc call failed", allAttrs...)
}

// StreamSubscribed logs a successful stream subscription.
func StreamSubscribed(stream, session string, attrs ...any) {
	allAttrs := make([]any, 0, 4+len(attrs))
	allAttrs = append(allAttrs, "stream", stream, "session", session)
	allAttrs = append(allAttrs, attrs...)
	Info("stream subscribed", allAttrs...)
}

// StreamBackpressure logs a stream's drop-accounting counters, typically on
// unsubscribe or disconnect, for operator visibility into lossy consumers
// (spec.md §5).
func StreamBackpressure(stream, session string, delivered, droppedFull, droppedClosed int64) {
	Warn("stream backpressure",
		"stream", stream,
		"session", session,
		"delivered", delivered,
		"dropped_full", droppedFull,
		"dropped_closed", droppedClosed,
	)
}

var (
	// sensitivePatterns match values this package always redacts before
	// logging: the Cortex auth token and any bearer-style header value.
	sensitivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"cortexToken"\s*:\s*"[^"]*"`),
		regexp.MustCompile(`Bearer\s+[a-zA-Z0-9_.-]+`),
	}
)

// RedactSensitiveData removes cortex tokens and bearer credentials from a
// string before it is logged. Safe for concurrent use.
func RedactSensitiveData(input string) string {
	result := input
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			if strings.HasPrefix(match, "Bearer ") {
				return "Bearer [REDACTED]"
			}
			return `"cortexToken":"[REDACTED]"`
		})
	}
	return result
}
