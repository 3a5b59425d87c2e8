package jsonrpc

import "encoding/json"

const (
	ErrCodeParse          = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
	ErrCodeServer         = -32000
)

// Request is the wire form of a method call. Version is empty for JSON-RPC
// 1.0 requests, which omit the member entirely.
type Request struct {
	Version ProtocolVersion `json:"jsonrpc,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// ParseRequest decodes a request envelope, as produced by Call.MarshalJSON,
// back into its method, positional params and id.
func ParseRequest(data []byte) (method string, params []interface{}, id json.RawMessage, err error) {
	var req Request
	if err = json.Unmarshal(data, &req); err != nil {
		return "", nil, nil, &ParseError{Raw: string(data), Err: err}
	}
	if len(req.Params) > 0 && string(req.Params) != "null" {
		if !isArray(req.Params) {
			return "", nil, nil, &ConversionError{Node: string(req.Params), Reason: "params must be an array"}
		}
		node, err := ParseNode(req.Params)
		if err != nil {
			return "", nil, nil, &ParseError{Raw: string(req.Params), Err: err}
		}
		params, _ = node.([]interface{})
	}
	if params == nil {
		params = []interface{}{}
	}
	return req.Method, params, req.ID, nil
}
