package jsonrpc

import "weak"

// ErrorHandler is the capability a delegate implements to be told about
// internal failures: transport, parse and conversion errors. Server errors
// are never passed to an ErrorHandler; they go to the call's Callback.
//
// The return value of a call-site delegate says whether the failure should
// also be offered to the Service's default delegate. The default delegate's
// return value is ignored.
type ErrorHandler interface {
	CallFailed(call *Call, err error) (fallback bool)
}

// ErrorHandlerFunc adapts a function to an ErrorHandler.
type ErrorHandlerFunc func(call *Call, err error) bool

func (f ErrorHandlerFunc) CallFailed(call *Call, err error) bool {
	return f(call, err)
}

// reference is a non-owning handle to a delegate.
type reference interface {
	resolve() interface{}
}

// Weak returns a non-owning reference to target for use as a delegate. The
// reference does not keep target reachable; once target is collected the
// delegate is treated as absent.
func Weak[T any](target *T) interface{} {
	return weakRef[T]{weak.Make(target)}
}

type weakRef[T any] struct {
	p weak.Pointer[T]
}

func (r weakRef[T]) resolve() interface{} {
	if v := r.p.Value(); v != nil {
		return v
	}
	return nil
}

// errorHandlerOf resolves delegate references and reports whether the
// delegate implements ErrorHandler.
func errorHandlerOf(delegate interface{}) (ErrorHandler, bool) {
	if ref, ok := delegate.(reference); ok {
		delegate = ref.resolve()
	}
	if delegate == nil {
		return nil, false
	}
	h, ok := delegate.(ErrorHandler)
	return h, ok
}

// delegateChain offers err to each delegate in order, stopping at the first
// one that returns false. Delegates which do not implement ErrorHandler are
// skipped.
func delegateChain(call *Call, err error, delegates ...interface{}) {
	offered := false
	for _, d := range delegates {
		h, ok := errorHandlerOf(d)
		if !ok {
			continue
		}
		offered = true
		if !h.CallFailed(call, err) {
			return
		}
	}
	if !offered {
		logger.Debugf("No error delegate for %s, dropping error: %s", call, err)
	}
}
