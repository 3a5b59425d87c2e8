package jsonrpc

import (
	"errors"
	"fmt"
)

// ErrEmptyMethod is returned when a call is constructed without a method name.
var ErrEmptyMethod = errors.New("jsonrpc: method name must not be empty")

// TransportError is a network or connectivity failure reported by the
// transport.
type TransportError struct {
	Err error
}

func (err *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s", err.Err)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}

// ParseError is returned when a reply is not valid JSON. Raw holds the text
// that failed to parse.
type ParseError struct {
	Raw string
	Err error
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %s", err.Err)
}

func (err *ParseError) Unwrap() error {
	return err.Err
}

// ConversionError is returned when a parsed reply has the wrong shape, does
// not correlate with its call, or cannot be converted into the requested
// result type.
type ConversionError struct {
	// Node is the JSON node that failed to convert.
	Node interface{}
	// TypeName is the requested result type, if any.
	TypeName string
	Reason   string
	Err      error
}

func (err *ConversionError) Error() string {
	msg := "conversion error"
	if err.TypeName != "" {
		msg = fmt.Sprintf("conversion to %s failed", err.TypeName)
	}
	if err.Reason != "" {
		msg += ": " + err.Reason
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *ConversionError) Unwrap() error {
	return err.Err
}

// ServerError is a well-formed error object returned by the remote peer.
type ServerError struct {
	Code    int
	Message string
	Data    interface{}
}

func (err *ServerError) Error() string {
	return fmt.Sprintf("%d: %s", err.Code, err.Message)
}

// ErrorCode returns the JSON-RPC error code sent by the server.
func (err *ServerError) ErrorCode() int {
	return err.Code
}

// IsInternal returns true for failures that originate in this client
// (transport, parse or conversion) rather than in the remote peer. Only
// internal failures are offered to error delegates.
func IsInternal(err error) bool {
	var (
		transportErr  *TransportError
		parseErr      *ParseError
		conversionErr *ConversionError
	)
	return errors.As(err, &transportErr) || errors.As(err, &parseErr) || errors.As(err, &conversionErr)
}
