package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// decodeResponse converts a raw reply for call into its outcome: a result
// (converted into rt when set) or one of ParseError, ConversionError or
// ServerError.
func decodeResponse(call *Call, reply []byte, rt ResultType) (interface{}, error) {
	node, err := ParseNode(reply)
	if err != nil {
		return nil, &ParseError{Raw: string(reply), Err: err}
	}
	obj, ok := node.(map[string]interface{})
	if !ok {
		return nil, &ConversionError{Node: node, TypeName: rt.Name(), Reason: "response is not an object"}
	}

	id, ok := obj["id"]
	if !ok {
		return nil, &ConversionError{Node: node, TypeName: rt.Name(), Reason: "response is missing id"}
	}
	if rawID, err := json.Marshal(id); err != nil || string(rawID) != compactID(call.id) {
		return nil, &ConversionError{
			Node:     node,
			TypeName: rt.Name(),
			Reason:   fmt.Sprintf("response id %s does not match call id %s", rawID, call.id),
		}
	}

	// A null error member is treated as absent; JSON-RPC 1.0 replies always
	// carry both members.
	errNode := obj["error"]
	result, hasResult := obj["result"]
	switch {
	case errNode != nil && result != nil:
		return nil, &ConversionError{Node: node, TypeName: rt.Name(), Reason: "response has both result and error"}
	case errNode != nil:
		return nil, serverError(errNode)
	case !hasResult:
		return nil, &ConversionError{Node: node, TypeName: rt.Name(), Reason: "response has neither result nor error"}
	}

	if rt.IsZero() {
		return result, nil
	}
	if nodes, ok := result.([]interface{}); ok {
		return rt.ConstructAll(nodes)
	}
	return rt.Construct(result)
}

// serverError extracts the error object of a reply. A malformed error object
// is a ConversionError rather than a ServerError.
func serverError(node interface{}) error {
	obj, ok := node.(map[string]interface{})
	if !ok {
		return &ConversionError{Node: node, TypeName: "*jsonrpc.ServerError", Reason: "error member is not an object"}
	}
	code, ok := obj["code"].(float64)
	if !ok {
		return &ConversionError{Node: node, TypeName: "*jsonrpc.ServerError", Reason: "error code is not a number"}
	}
	var message string
	switch m := obj["message"].(type) {
	case string:
		message = m
	case nil:
	default:
		message = fmt.Sprint(m)
	}
	return &ServerError{
		Code:    int(code),
		Message: message,
		Data:    obj["data"],
	}
}
