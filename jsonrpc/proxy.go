package jsonrpc

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownMethod is returned by Proxy.Invoke for a name missing from its
// method table.
var ErrUnknownMethod = errors.New("jsonrpc: unknown method")

// Invoker calls remote methods by name.
type Invoker interface {
	Invoke(method string, params ...interface{}) *ResponseHandler
}

// Proxy exposes a fixed set of remote methods. Each registered name maps to
// the result type its handler is preconfigured with.
type Proxy struct {
	Service *Service

	methods map[string]ResultType
}

// NewProxy returns a Proxy for service with an empty method table.
func NewProxy(service *Service) *Proxy {
	return &Proxy{Service: service}
}

// Register adds method to the table. A zero rt delivers generic JSON nodes.
func (p *Proxy) Register(method string, rt ResultType) error {
	if method == "" {
		return ErrEmptyMethod
	}
	if p.methods == nil {
		p.methods = map[string]ResultType{}
	}
	p.methods[method] = rt
	return nil
}

// Methods returns the registered method names, sorted.
func (p *Proxy) Methods() []string {
	names := make([]string, 0, len(p.methods))
	for name := range p.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke calls a registered method and returns its handler with the
// registered result type set.
func (p *Proxy) Invoke(method string, params ...interface{}) (*ResponseHandler, error) {
	rt, ok := p.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	return p.Service.callWithName(method, params, rt), nil
}
