package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func assertEqualJSON(t *testing.T, a, b interface{}, format string, args ...interface{}) {
	t.Helper()

	aa, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	bb, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Compare(aa, bb) != 0 {
		prefix := fmt.Sprintf(format, args...)
		t.Errorf(prefix+"\n   got: %q\n  want: %q", aa, bb)
	}
}

// replyWith returns a transport answering every request with format, where
// %s is replaced by the request's id. A format without %s is sent as is.
func replyWith(format string) Transport {
	return TransportFunc(func(ctx context.Context, address string, request []byte) ([]byte, error) {
		if !strings.Contains(format, "%s") {
			return []byte(format), nil
		}
		_, _, id, err := ParseRequest(request)
		if err != nil {
			return nil, err
		}
		return []byte(fmt.Sprintf(format, id)), nil
	})
}

// waitDone runs loop on the calling goroutine until h is done.
func waitDone(t *testing.T, loop *Loop, h *ResponseHandler) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		loop.RunOnce()
		select {
		case <-h.Done():
			return
		case <-timeout:
			t.Fatalf("timed out waiting for %s", h.Call())
		case <-loop.wake:
		}
	}
}

// waitQueued blocks until loop has at least n queued deliveries.
func waitQueued(t *testing.T, loop *Loop, n int) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for loop.Pending() < n {
		select {
		case <-timeout:
			t.Fatalf("timed out waiting for %d queued deliveries", n)
		case <-loop.wake:
		}
	}
}

type outcome struct {
	call   *Call
	result interface{}
	err    error
}

// recorder collects callback invocations.
type recorder struct {
	outcomes []outcome
}

func (r *recorder) callback(call *Call, result interface{}, err error) {
	r.outcomes = append(r.outcomes, outcome{call, result, err})
}

func (r *recorder) only(t *testing.T) outcome {
	t.Helper()
	if len(r.outcomes) != 1 {
		t.Fatalf("expected 1 callback, got %d", len(r.outcomes))
	}
	return r.outcomes[0]
}

// failLog is an ErrorHandler which records its invocations into a shared
// log.
type failLog struct {
	name     string
	fallback bool
	log      *[]string
	errs     []error
}

func (f *failLog) CallFailed(call *Call, err error) bool {
	*f.log = append(*f.log, f.name)
	f.errs = append(f.errs, err)
	return f.fallback
}

// item implements NodeUnmarshaler.
type item struct {
	A float64
}

func (i *item) UnmarshalNode(node interface{}) error {
	obj, ok := node.(map[string]interface{})
	if !ok {
		return fmt.Errorf("expected object, got %T", node)
	}
	a, ok := obj["a"].(float64)
	if !ok {
		return fmt.Errorf("missing a: %v", obj)
	}
	i.A = a
	return nil
}

// person implements NodeUnmarshaler and NodeMarshaler.
type person struct {
	First string
	Last  string
}

func (p *person) UnmarshalNode(node interface{}) error {
	obj, ok := node.(map[string]interface{})
	if !ok {
		return fmt.Errorf("expected object, got %T", node)
	}
	p.First, _ = obj["firstname"].(string)
	p.Last, _ = obj["lastname"].(string)
	return nil
}

func (p *person) MarshalNode() (interface{}, error) {
	return map[string]interface{}{
		"firstname": p.First,
		"lastname":  p.Last,
	}, nil
}

// plain does not implement NodeUnmarshaler.
type plain struct {
	A float64
}

// fixedID issues the same id for every call.
type fixedID int64

func (id fixedID) NextID() interface{} {
	return int64(id)
}
