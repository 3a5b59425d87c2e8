package jsonrpc

import (
	"context"
	"sync"
)

// Dispatcher schedules the delivery of call completions. Transports complete
// on their own goroutines; the Dispatcher decides where the callbacks run.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatchFunc adapts a function to a Dispatcher.
type DispatchFunc func(fn func())

func (f DispatchFunc) Dispatch(fn func()) {
	f(fn)
}

// Serial returns a Dispatcher that runs deliveries on the completing
// goroutine, one at a time.
func Serial() Dispatcher {
	return &serial{}
}

type serial struct {
	mu sync.Mutex
}

func (s *serial) Dispatch(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

var _ Dispatcher = &Loop{}

// Loop is a Dispatcher which queues deliveries until the owning goroutine
// runs them with Run or RunOnce. Completions for every call dispatched
// through a Loop are delivered on that goroutine, in completion order.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop returns an empty Loop.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Dispatch queues fn. It never blocks.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RunOnce runs the deliveries queued so far and returns how many ran.
func (l *Loop) RunOnce() int {
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Run delivers queued completions until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunOnce()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Pending returns the number of queued deliveries.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
