package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCode_KnownCodes(t *testing.T) {
	assert.Equal(t, KindTokenInvalid, ClassifyCode(-32001))
	assert.Equal(t, KindPermissionDenied, ClassifyCode(-32022))
	assert.Equal(t, KindInvalidArgument, ClassifyCode(-32602))
	assert.Equal(t, KindNotFound, ClassifyCode(-32604))
}

func TestClassifyCode_UnknownDefaultsToServer(t *testing.T) {
	assert.Equal(t, KindServer, ClassifyCode(-1))
}

func TestFromRPCError_Fields(t *testing.T) {
	err := FromRPCError("queryHeadsets", -32022, "not allowed", []byte(`{"detail":"x"}`))
	assert.Equal(t, KindPermissionDenied, err.Kind)
	assert.Equal(t, "queryHeadsets", err.Method)
	assert.Equal(t, -32022, err.Code)
	assert.Contains(t, err.Error(), "queryHeadsets")
	assert.Contains(t, err.Error(), "not allowed")
}

func TestError_UnwrapMatchesSentinel(t *testing.T) {
	err := NewError(KindTimeout, "createSession", "deadline exceeded")
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.False(t, errors.Is(err, ErrProtocol))
}

func TestRetryable_TransientKinds(t *testing.T) {
	for _, kind := range []Kind{KindConnectionClosed, KindTransport, KindTimeout, KindTokenInvalid} {
		err := NewError(kind, "m", "x")
		assert.True(t, Retryable(err), "expected %s to be retryable", kind)
	}
}

func TestRetryable_NonTransientKinds(t *testing.T) {
	for _, kind := range []Kind{KindPermissionDenied, KindNotFound, KindInvalidArgument, KindServer, KindConfig} {
		err := NewError(kind, "m", "x")
		assert.False(t, Retryable(err), "expected %s to not be retryable", kind)
	}
}

func TestRetryable_NonProtocolError(t *testing.T) {
	assert.False(t, Retryable(errors.New("plain error")))
}

func TestKindOf(t *testing.T) {
	err := NewError(KindNotFound, "m", "x")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestError_ErrorStringWithoutMethod(t *testing.T) {
	err := &Error{Kind: KindTransport, Message: "socket closed"}
	assert.NotContains(t, err.Error(), "()")
	require.Contains(t, err.Error(), "socket closed")
}
