package protocol

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the taxonomy buckets the resilient
// layer uses to decide whether to retry.
type Kind string

const (
	KindConfig           Kind = "config"
	KindTransport        Kind = "transport"
	KindTimeout          Kind = "timeout"
	KindConnectionClosed Kind = "connection_closed"
	KindCanceled         Kind = "canceled"
	KindProtocol         Kind = "protocol"
	KindTokenInvalid     Kind = "token_invalid"
	KindPermissionDenied Kind = "permission_denied"
	KindNotFound         Kind = "not_found"
	KindInvalidArgument  Kind = "invalid_argument"
	KindServer           Kind = "server"
)

// Sentinel errors for errors.Is-based matching independent of the
// originating method or message text.
var (
	ErrConfig           = errors.New("cortex: invalid configuration")
	ErrTransport        = errors.New("cortex: transport failure")
	ErrTimeout          = errors.New("cortex: request timed out")
	ErrConnectionClosed = errors.New("cortex: connection closed")
	ErrCanceled         = errors.New("cortex: call canceled by caller")
	ErrProtocol         = errors.New("cortex: protocol violation")
	ErrTokenInvalid     = errors.New("cortex: token invalid")
	ErrPermissionDenied = errors.New("cortex: permission denied")
	ErrNotFound         = errors.New("cortex: resource not found")
	ErrInvalidArgument  = errors.New("cortex: invalid argument")
	ErrServer           = errors.New("cortex: server error")
)

var sentinelsByKind = map[Kind]error{
	KindConfig:           ErrConfig,
	KindTransport:        ErrTransport,
	KindTimeout:          ErrTimeout,
	KindConnectionClosed: ErrConnectionClosed,
	KindCanceled:         ErrCanceled,
	KindProtocol:         ErrProtocol,
	KindTokenInvalid:     ErrTokenInvalid,
	KindPermissionDenied: ErrPermissionDenied,
	KindNotFound:         ErrNotFound,
	KindInvalidArgument:  ErrInvalidArgument,
	KindServer:           ErrServer,
}

// Error is the structured error returned by every public operation in this
// module. Method names the originating RPC (or "" for transport-level
// failures not tied to a single call) to aid diagnosis per spec.md §7.
type Error struct {
	Kind    Kind
	Method  string
	Message string
	Code    int    // upstream Cortex JSON-RPC error code, if any
	Data    []byte // upstream error data payload, raw, if any
}

func (e *Error) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("cortex: %s: %s (%s)", e.Method, e.Message, e.Kind)
	}
	return fmt.Sprintf("cortex: %s (%s)", e.Message, e.Kind)
}

// Unwrap exposes the matching sentinel so errors.Is(err, protocol.ErrTimeout)
// works on a *Error without callers needing to inspect Kind directly.
func (e *Error) Unwrap() error {
	return sentinelsByKind[e.Kind]
}

// NewError builds a structured error of the given kind.
func NewError(kind Kind, method, message string) *Error {
	return &Error{Kind: kind, Method: method, Message: message}
}

// cortexErrorCodes maps well-known Cortex JSON-RPC error codes to a Kind.
// Codes not listed here default to KindServer (spec.md §9 open question:
// undocumented codes default to surface, i.e. non-retryable KindServer).
var cortexErrorCodes = map[int]Kind{
	-32000: KindServer,
	-32001: KindTokenInvalid, // invalid/expired auth token
	-32002: KindTokenInvalid, // access denied pending approval -> refresh flow
	-32022: KindPermissionDenied,
	-32032: KindTokenInvalid,
	-32600: KindProtocol, // invalid JSON-RPC request
	-32601: KindProtocol, // method not found
	-32602: KindInvalidArgument,
	-32604: KindNotFound,
	-32700: KindProtocol, // parse error
}

// ClassifyCode maps an upstream JSON-RPC error code to a Kind.
func ClassifyCode(code int) Kind {
	if kind, ok := cortexErrorCodes[code]; ok {
		return kind
	}
	return KindServer
}

// FromRPCError builds a structured Error from a decoded JSON-RPC error object.
func FromRPCError(method string, code int, message string, data []byte) *Error {
	return &Error{
		Kind:    ClassifyCode(code),
		Method:  method,
		Message: message,
		Code:    code,
		Data:    data,
	}
}

// Retryable reports whether err belongs to one of the transient kinds the
// resilient client retries exactly once (spec.md §4.6, §7): ConnectionClosed,
// Transport, Timeout, TokenInvalid.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindConnectionClosed, KindTransport, KindTimeout, KindTokenInvalid:
		return true
	default:
		return false
	}
}

// KindOf extracts the Kind from err, or "" if err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
