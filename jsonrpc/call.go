package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Call is one method invocation. It is immutable once constructed; the
// request envelope is encoded up front so that a Call which exists can
// always be sent.
type Call struct {
	method  string
	params  []interface{}
	id      json.RawMessage
	version ProtocolVersion
	body    []byte
}

func newCall(version ProtocolVersion, id interface{}, method string, params []interface{}) (*Call, error) {
	if method == "" {
		return nil, ErrEmptyMethod
	}
	if params == nil {
		params = []interface{}{}
	}
	// Own the params slice so later changes by the caller are not observed.
	params = append([]interface{}(nil), params...)

	rawID, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call id: %w", err)
	}
	rawParams, err := encodeParams(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params for %s: %w", method, err)
	}
	body, err := json.Marshal(&Request{
		Version: version.envelopeVersion(),
		Method:  method,
		Params:  rawParams,
		ID:      rawID,
	})
	if err != nil {
		return nil, err
	}
	return &Call{
		method:  method,
		params:  params,
		id:      rawID,
		version: version,
		body:    body,
	}, nil
}

// Method returns the remote method name.
func (c *Call) Method() string {
	return c.method
}

// Params returns a copy of the positional parameters.
func (c *Call) Params() []interface{} {
	return append([]interface{}(nil), c.params...)
}

// ID returns the JSON encoding of the call's correlation token.
func (c *Call) ID() json.RawMessage {
	return append(json.RawMessage(nil), c.id...)
}

// Version returns the protocol version of the request envelope.
func (c *Call) Version() ProtocolVersion {
	return c.version
}

// MarshalJSON returns the request envelope.
func (c *Call) MarshalJSON() ([]byte, error) {
	return append([]byte(nil), c.body...), nil
}

func (c *Call) String() string {
	return fmt.Sprintf("%s#%s", c.method, c.id)
}
