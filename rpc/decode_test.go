package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-bci/cortex-go/protocol"
)

func TestClassify_Response(t *testing.T) {
	frame := Classify([]byte(`{"jsonrpc":"2.0","id":4,"result":{"ok":true}}`))

	require.NoError(t, frame.Err)
	require.NotNil(t, frame.Response)
	require.NotNil(t, frame.Response.ID)
	assert.Equal(t, uint64(4), *frame.Response.ID)
	assert.Nil(t, frame.StreamEvent)
}

func TestClassify_ErrorResponse(t *testing.T) {
	frame := Classify([]byte(`{"jsonrpc":"2.0","id":5,"error":{"code":-32001,"message":"token invalid"}}`))

	require.NoError(t, frame.Err)
	require.NotNil(t, frame.Response)
	require.NotNil(t, frame.Response.Error)
	assert.Equal(t, -32001, frame.Response.Error.Code)
}

func TestClassify_StreamEvent(t *testing.T) {
	frame := Classify([]byte(`{"sid":"session-1","time":12.5,"eeg":[1.1,2.2]}`))

	require.NoError(t, frame.Err)
	require.NotNil(t, frame.StreamEvent)
	assert.Equal(t, "session-1", frame.StreamEvent.SessionID)
	assert.Equal(t, protocol.StreamEEG, frame.StreamEvent.Record.Kind())
}

func TestClassify_MalformedJSON(t *testing.T) {
	frame := Classify([]byte(`not json`))
	require.Error(t, frame.Err)
	assert.ErrorIs(t, frame.Err, protocol.ErrProtocol)
}

func TestClassify_NeitherIDNorSID(t *testing.T) {
	frame := Classify([]byte(`{"jsonrpc":"2.0"}`))
	require.Error(t, frame.Err)
	assert.ErrorIs(t, frame.Err, protocol.ErrProtocol)
}

func TestDecodeResult(t *testing.T) {
	resp := &Response{Result: []byte(`{"status":"active"}`)}

	var dst struct {
		Status string `json:"status"`
	}
	require.NoError(t, DecodeResult(resp, &dst))
	assert.Equal(t, "active", dst.Status)
}

func TestDecodeResult_EmptyResult(t *testing.T) {
	resp := &Response{}
	var dst map[string]interface{}
	require.NoError(t, DecodeResult(resp, &dst))
	assert.Nil(t, dst)
}

func TestAsError_NoError(t *testing.T) {
	resp := &Response{}
	assert.Nil(t, AsError("queryHeadsets", resp))
}

func TestAsError_WithError(t *testing.T) {
	resp := &Response{Error: &RPCError{Code: -32022, Message: "not allowed"}}

	err := AsError("controlDevice", resp)
	require.Error(t, err)

	var apiErr *protocol.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, protocol.KindPermissionDenied, apiErr.Kind)
	assert.Equal(t, "controlDevice", apiErr.Method)
}
