package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/nova-bci/cortex-go/protocol"
)

// Frame is the result of classifying a single inbound wire message: either a
// Response (id present), a StreamEvent (spec.md §4.1's id-absent rule), or
// neither, in which case Err explains why (spec.md §4.3 step 3 — a parse
// failure is reported, not fatal).
type Frame struct {
	Response    *Response
	StreamEvent *protocol.StreamEvent
	Err         error
}

// Classify parses a raw inbound message and determines whether it is a
// JSON-RPC response or an unsolicited stream event.
func Classify(data []byte) Frame {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Frame{Err: fmt.Errorf("%w: malformed frame: %s", protocol.ErrProtocol, err)}
	}

	if protocol.IsStreamEvent(raw) {
		ev, err := protocol.DecodeStreamEvent(raw)
		if err != nil {
			return Frame{Err: err}
		}
		return Frame{StreamEvent: ev}
	}

	if _, hasID := raw["id"]; hasID {
		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			return Frame{Err: fmt.Errorf("%w: malformed response: %s", protocol.ErrProtocol, err)}
		}
		return Frame{Response: &resp}
	}

	return Frame{Err: fmt.Errorf("%w: frame has neither id nor sid", protocol.ErrProtocol)}
}

// DecodeResult decodes a successful response's raw result into dst.
func DecodeResult(resp *Response, dst interface{}) error {
	if resp.Error != nil {
		return nil // caller should check Error first via AsError
	}
	if len(resp.Result) == 0 || dst == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, dst); err != nil {
		return fmt.Errorf("%w: decoding result: %s", protocol.ErrProtocol, err)
	}
	return nil
}

// AsError converts a response carrying an "error" member into a structured
// protocol.Error, classified by Cortex error code (spec.md §4.2, §7).
func AsError(method string, resp *Response) error {
	if resp.Error == nil {
		return nil
	}
	return protocol.FromRPCError(method, resp.Error.Code, resp.Error.Message, resp.Error.Data)
}
