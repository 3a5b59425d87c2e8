package jsonrpc

import "context"

// Transport delivers an encoded request to address and returns the raw
// reply. Send is called on its own goroutine for every call and completes
// exactly once.
type Transport interface {
	Send(ctx context.Context, address string, request []byte) ([]byte, error)
}

// TransportFunc adapts a function to a Transport.
type TransportFunc func(ctx context.Context, address string, request []byte) ([]byte, error)

func (f TransportFunc) Send(ctx context.Context, address string, request []byte) ([]byte, error) {
	return f(ctx, address, request)
}
