package jsonrpc

import "sync"

// Callback receives the outcome of a call: a result, or an error which is
// either a *ServerError or an internal failure (*TransportError,
// *ParseError, *ConversionError).
type Callback func(call *Call, result interface{}, err error)

// ResponseHandler mediates between the transport's reply to one call and the
// caller. It is returned unconfigured by Service.CallMethod. A reply that
// arrives before SetDelegate, Configure or Discard is held until one of them
// is called, so SetResultType must come first if it is set separately. Call
// SetDelegate(nil, nil) to leave failures to the Service's default delegate.
type ResponseHandler struct {
	call    *Call
	service *Service
	done    chan struct{}

	mu         sync.Mutex
	target     interface{}
	callback   Callback
	resultType ResultType
	configured bool
	parked     *completion
	finished   bool
}

// completion is a transport outcome waiting for the handler to be
// configured.
type completion struct {
	reply []byte
	err   error
}

func newResponseHandler(s *Service, call *Call) *ResponseHandler {
	return &ResponseHandler{
		call:    call,
		service: s,
		done:    make(chan struct{}),
	}
}

// Call returns the call this handler was issued for.
func (h *ResponseHandler) Call() *Call {
	return h.call
}

// SetDelegate sets the object expecting the response and the callback to
// invoke with it. If target implements ErrorHandler (directly or through a
// Weak reference), it is the first tier for internal failures.
func (h *ResponseHandler) SetDelegate(target interface{}, callback Callback) *ResponseHandler {
	h.mu.Lock()
	h.target = target
	h.callback = callback
	return h.release()
}

// SetResultType sets the type the result is converted into.
func (h *ResponseHandler) SetResultType(rt ResultType) *ResponseHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resultType = rt
	return h
}

// Configure is SetDelegate and SetResultType in one step.
func (h *ResponseHandler) Configure(target interface{}, callback Callback, rt ResultType) *ResponseHandler {
	h.mu.Lock()
	h.target = target
	h.callback = callback
	h.resultType = rt
	return h.release()
}

// release marks the handler configured and dispatches a held reply. Must be
// called with h.mu held; it unlocks.
func (h *ResponseHandler) release() *ResponseHandler {
	h.configured = true
	parked := h.parked
	h.parked = nil
	h.mu.Unlock()

	if parked != nil {
		h.dispatch(parked.reply, parked.err)
	}
	return h
}

// Discard drops interest in the reply. The request is not cancelled; when
// the reply arrives it is ignored, and internal failures are not offered to
// any delegate.
func (h *ResponseHandler) Discard() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.target = nil
	h.callback = nil
	h.configured = true
	h.parked = nil
	if !h.finished {
		h.finished = true
		close(h.done)
	}
}

// Done returns a channel which is closed once the outcome was delivered or
// the handler was discarded.
func (h *ResponseHandler) Done() <-chan struct{} {
	return h.done
}

// complete hands the transport's outcome to the service's dispatcher, or
// holds it until the handler is configured.
func (h *ResponseHandler) complete(reply []byte, err error) {
	h.mu.Lock()
	if !h.configured {
		h.parked = &completion{reply, err}
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()
	h.dispatch(reply, err)
}

func (h *ResponseHandler) dispatch(reply []byte, err error) {
	h.service.dispatcher.Dispatch(func() {
		h.deliver(reply, err)
	})
}

func (h *ResponseHandler) deliver(reply []byte, err error) {
	h.mu.Lock()
	target, callback, rt := h.target, h.callback, h.resultType
	if h.finished {
		h.mu.Unlock()
		logger.Debugf("Ignoring reply for discarded call %s", h.call)
		return
	}
	h.finished = true
	h.mu.Unlock()
	defer close(h.done)

	var result interface{}
	if err == nil {
		result, err = decodeResponse(h.call, reply, rt)
	}
	if err != nil {
		logger.Debugf("Call %s failed: %s", h.call, err)
	}

	if callback != nil {
		callback(h.call, result, err)
	}
	if err != nil && IsInternal(err) {
		delegateChain(h.call, err, target, h.service.delegate)
	}
}
