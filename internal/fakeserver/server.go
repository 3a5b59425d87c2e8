// Package fakeserver is an in-process JSON-RPC 1.0/2.0 peer for tests.
package fakeserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"unicode"
)

const (
	ErrCodeParse          = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
)

type request struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// ErrorObject is the "error" member of a reply.
type ErrorObject struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func (err *ErrorObject) Error() string {
	return fmt.Sprintf("%d: %s", err.Code, err.Message)
}

type successResponse struct {
	Version string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	ID      json.RawMessage `json:"id"`
}

type errorResponse struct {
	Version string          `json:"jsonrpc"`
	Error   *ErrorObject    `json:"error"`
	ID      json.RawMessage `json:"id"`
}

// version1Response always carries both members, one of them null.
type version1Response struct {
	Result json.RawMessage `json:"result"`
	Error  *ErrorObject    `json:"error"`
	ID     json.RawMessage `json:"id"`
}

// Server contains the method registry.
type Server struct {
	registry map[string]Method
	requests int64
}

// Register adds valid methods from the receiver to the registry with the given
// prefix. Method names are lowercased.
func (s *Server) Register(prefix string, receiver interface{}) error {
	methods, err := Methods(receiver)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for name, m := range methods {
		buf.WriteString(prefix)
		buf.WriteRune(unicode.ToLower(rune(name[0])))
		buf.WriteString(name[1:])
		s.add(buf.String(), m)
		buf.Reset()
	}
	return nil
}

// RegisterMethod adds a single method of receiver under name.
func (s *Server) RegisterMethod(name string, receiver interface{}, methodName string) error {
	methods, err := Methods(receiver)
	if err != nil {
		return err
	}
	m, ok := methods[methodName]
	if !ok {
		return fmt.Errorf("method not found: %s", methodName)
	}
	s.add(name, m)
	return nil
}

func (s *Server) add(name string, m Method) {
	if s.registry == nil {
		s.registry = map[string]Method{}
	}
	s.registry[name] = m
}

// Requests returns the number of requests handled so far.
func (s *Server) Requests() int {
	return int(atomic.LoadInt64(&s.requests))
}

// Handle answers one encoded request in the request's protocol version.
// Requests without "jsonrpc":"2.0" are answered in the 1.0 format.
func (s *Server) Handle(ctx context.Context, data []byte) []byte {
	atomic.AddInt64(&s.requests, 1)

	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return encodeReply("2.0", nil, nil, &ErrorObject{
			Code:    ErrCodeParse,
			Message: fmt.Sprintf("failed to parse request: %s", err),
		})
	}
	result, errObj := s.call(ctx, &req)
	return encodeReply(req.Version, req.ID, result, errObj)
}

func (s *Server) call(ctx context.Context, req *request) (json.RawMessage, *ErrorObject) {
	m, ok := s.registry[req.Method]
	if !ok {
		return nil, &ErrorObject{
			Code:    ErrCodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}
	args, err := parsePositionalArguments(req.Params, m.ArgTypes)
	if err != nil {
		return nil, &ErrorObject{
			Code:    ErrCodeInvalidParams,
			Message: fmt.Sprintf("invalid params: %s", err),
		}
	}
	res, err := m.Call(ctx, args)
	if err != nil {
		if errObj, ok := err.(*ErrorObject); ok {
			return nil, errObj
		}
		return nil, &ErrorObject{
			Code:    ErrCodeInternal,
			Message: err.Error(),
		}
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, &ErrorObject{
			Code:    ErrCodeInternal,
			Message: fmt.Sprintf("failed to encode response: %s", err),
		}
	}
	return raw, nil
}

func encodeReply(version string, id, result json.RawMessage, errObj *ErrorObject) []byte {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	var reply interface{}
	switch {
	case version != "2.0":
		reply = version1Response{Result: result, Error: errObj, ID: id}
	case errObj != nil:
		reply = errorResponse{Version: version, Error: errObj, ID: id}
	default:
		reply = successResponse{Version: version, Result: result, ID: id}
	}
	data, err := json.Marshal(reply)
	if err != nil {
		panic(fmt.Sprintf("fakeserver: failed to encode reply: %s", err))
	}
	return data
}
