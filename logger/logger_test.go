package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLevel(t *testing.T) {
	SetLevel(slog.LevelDebug)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set")
	}

	SetLevel(slog.LevelInfo)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set")
	}

	SetLevel(slog.LevelWarn)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set")
	}

	SetLevel(slog.LevelError)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set")
	}
}

func TestSetVerbose(t *testing.T) {
	SetVerbose(true)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set after SetVerbose(true)")
	}

	SetVerbose(false)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set after SetVerbose(false)")
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	orig := logOutput
	defer func() { logOutput = orig }()

	var buf bytes.Buffer
	logOutput = &buf
	initLoggerWithConfig(slog.LevelDebug, nil, NewModuleConfig(slog.LevelDebug), false)
	fn()
	return buf.String()
}

func TestInfoAndDebug(t *testing.T) {
	output := captureOutput(t, func() {
		Info("info message", "key", "value")
		Debug("debug message", "key", "value")
	})
	if !strings.Contains(output, "info message") {
		t.Errorf("expected info message in output, got: %s", output)
	}
	if !strings.Contains(output, "debug message") {
		t.Errorf("expected debug message in output, got: %s", output)
	}
}

func TestWarnAndError(t *testing.T) {
	output := captureOutput(t, func() {
		Warn("warn message")
		Error("error message")
	})
	if !strings.Contains(output, "warn message") {
		t.Errorf("expected warn message in output, got: %s", output)
	}
	if !strings.Contains(output, "error message") {
		t.Errorf("expected error message in output, got: %s", output)
	}
}

func TestContextVariants(t *testing.T) {
	ctx := WithSessionID(context.Background(), "session-1")
	output := captureOutput(t, func() {
		InfoContext(ctx, "info")
		DebugContext(ctx, "debug")
		WarnContext(ctx, "warn")
		ErrorContext(ctx, "error")
	})
	if !strings.Contains(output, "session_id=session-1") {
		t.Errorf("expected session_id in output, got: %s", output)
	}
}

func TestRPCCall(t *testing.T) {
	output := captureOutput(t, func() {
		RPCCall("queryHeadsets", 1)
		RPCCall("authorize", 2, "client_id", "abc")
	})
	if !strings.Contains(output, "method=queryHeadsets") {
		t.Errorf("expected method attribute, got: %s", output)
	}
	if !strings.Contains(output, "request_id=1") {
		t.Errorf("expected request_id attribute, got: %s", output)
	}
}

func TestRPCResponse(t *testing.T) {
	output := captureOutput(t, func() {
		RPCResponse("queryHeadsets", 1, "count", 3)
	})
	if !strings.Contains(output, "rpc response") {
		t.Errorf("expected rpc response message, got: %s", output)
	}
}

func TestRPCError(t *testing.T) {
	output := captureOutput(t, func() {
		RPCError("authorize", 1, errors.New("token invalid"))
	})
	if !strings.Contains(output, "rpc call failed") {
		t.Errorf("expected rpc call failed message, got: %s", output)
	}
	if !strings.Contains(output, "token invalid") {
		t.Errorf("expected wrapped error text, got: %s", output)
	}
}

func TestStreamSubscribed(t *testing.T) {
	output := captureOutput(t, func() {
		StreamSubscribed("eeg", "session-1")
	})
	if !strings.Contains(output, "stream subscribed") {
		t.Errorf("expected stream subscribed message, got: %s", output)
	}
	if !strings.Contains(output, "stream=eeg") {
		t.Errorf("expected stream attribute, got: %s", output)
	}
}

func TestStreamBackpressure(t *testing.T) {
	output := captureOutput(t, func() {
		StreamBackpressure("eeg", "session-1", 100, 5, 2)
	})
	if !strings.Contains(output, "dropped_full=5") {
		t.Errorf("expected dropped_full attribute, got: %s", output)
	}
	if !strings.Contains(output, "dropped_closed=2") {
		t.Errorf("expected dropped_closed attribute, got: %s", output)
	}
}

func TestRedactSensitiveData_Token(t *testing.T) {
	input := `{"cortexToken":"abc123def456"}`
	result := RedactSensitiveData(input)
	if strings.Contains(result, "abc123def456") {
		t.Errorf("expected token to be redacted, got: %s", result)
	}
	if !strings.Contains(result, "[REDACTED]") {
		t.Errorf("expected redaction marker, got: %s", result)
	}
}

func TestRedactSensitiveData_Bearer(t *testing.T) {
	input := "Authorization: Bearer abcdef123456"
	result := RedactSensitiveData(input)
	if strings.Contains(result, "abcdef123456") {
		t.Errorf("expected bearer token to be redacted, got: %s", result)
	}
	if !strings.Contains(result, "Bearer [REDACTED]") {
		t.Errorf("expected bearer redaction marker, got: %s", result)
	}
}

func TestRedactSensitiveData_NoSensitiveData(t *testing.T) {
	input := "plain text with no secrets"
	result := RedactSensitiveData(input)
	if result != input {
		t.Errorf("expected unchanged text, got: %s", result)
	}
}

func TestNew_ModuleLogger(t *testing.T) {
	output := captureOutput(t, func() {
		l := New("transport")
		l.Info("dialing")
	})
	if !strings.Contains(output, "logger=cortex.transport") {
		t.Errorf("expected module-scoped logger attribute, got: %s", output)
	}
}
