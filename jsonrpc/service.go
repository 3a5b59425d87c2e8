package jsonrpc

import (
	"context"
	"errors"
)

// Options configures a Service. Zero values select the defaults.
type Options struct {
	// Version is the protocol version of constructed calls. Defaults to
	// Version2.
	Version ProtocolVersion
	// Transport sends requests. Defaults to an HTTPTransport.
	Transport Transport
	// Dispatcher schedules completion delivery. Defaults to Serial().
	Dispatcher Dispatcher
	// Delegate is the default error delegate, the second tier for internal
	// failures. It is only used if it implements ErrorHandler. Pass
	// Weak(&d) to keep the Service from extending its lifetime.
	Delegate interface{}
	// IDs generates call ids. Defaults to SequentialIDs.
	IDs IDGenerator
}

var _ Invoker = &Service{}

// Service is a remote JSON-RPC endpoint. It is safe for concurrent use; its
// configuration is fixed at construction.
type Service struct {
	address    string
	version    ProtocolVersion
	transport  Transport
	dispatcher Dispatcher
	delegate   interface{}
	ids        IDGenerator
}

// NewService returns a Service for the endpoint at address.
func NewService(address string, opts Options) *Service {
	s := &Service{
		address:    address,
		version:    opts.Version,
		transport:  opts.Transport,
		dispatcher: opts.Dispatcher,
		delegate:   opts.Delegate,
		ids:        opts.IDs,
	}
	if s.version == "" {
		s.version = Version2
	}
	if s.transport == nil {
		s.transport = &HTTPTransport{}
	}
	if s.dispatcher == nil {
		s.dispatcher = Serial()
	}
	if s.ids == nil {
		s.ids = &SequentialIDs{}
	}
	return s
}

// Address returns the remote address.
func (s *Service) Address() string {
	return s.address
}

// Version returns the protocol version of calls built by this Service.
func (s *Service) Version() ProtocolVersion {
	return s.version
}

// NewCall constructs a call with a fresh id.
func (s *Service) NewCall(method string, params ...interface{}) (*Call, error) {
	return newCall(s.version, s.ids.NextID(), method, params)
}

// CallMethod sends call and returns its unconfigured ResponseHandler without
// waiting for the transport.
func (s *Service) CallMethod(call *Call) *ResponseHandler {
	return s.send(newResponseHandler(s, call))
}

func (s *Service) send(h *ResponseHandler) *ResponseHandler {
	call := h.call
	logger.Debugf("Sending %s to %s", call, s.address)
	go func() {
		reply, err := s.transport.Send(context.Background(), s.address, call.body)
		if err != nil {
			var transportErr *TransportError
			if !errors.As(err, &transportErr) {
				err = &TransportError{Err: err}
			}
		}
		h.complete(reply, err)
	}()
	return h
}

// CallMethodWithName constructs and sends a call. If the call cannot be
// constructed, the failure is delivered through the returned handler as a
// ConversionError.
func (s *Service) CallMethodWithName(method string, params []interface{}) *ResponseHandler {
	return s.callWithName(method, params, ResultType{})
}

// callWithName is CallMethodWithName with the handler's result type set
// before the request is sent.
func (s *Service) callWithName(method string, params []interface{}, rt ResultType) *ResponseHandler {
	call, err := s.NewCall(method, params...)
	if err == nil {
		h := newResponseHandler(s, call)
		h.resultType = rt
		return s.send(h)
	}

	h := newResponseHandler(s, &Call{
		method:  method,
		params:  append([]interface{}(nil), params...),
		version: s.version,
	})
	h.resultType = rt
	convErr := &ConversionError{Node: params, Reason: "failed to construct call", Err: err}
	go h.complete(nil, convErr)
	return h
}

// CallMethodWithNameAndParams is CallMethodWithName with variadic params.
func (s *Service) CallMethodWithNameAndParams(method string, params ...interface{}) *ResponseHandler {
	return s.CallMethodWithName(method, params)
}

// Invoke implements Invoker.
func (s *Service) Invoke(method string, params ...interface{}) *ResponseHandler {
	return s.CallMethodWithName(method, params)
}
