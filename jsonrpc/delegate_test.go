package jsonrpc

import (
	"errors"
	"reflect"
	"runtime"
	"testing"
)

func TestDelegateChainOrder(t *testing.T) {
	var log []string
	def := &failLog{name: "default", fallback: false, log: &log}
	svc, loop := newLoopService(replyWith(`{"jsonrpc":"2.0","result":`), def)

	callSite := &failLog{name: "call-site", fallback: true, log: &log}
	h := svc.CallMethodWithNameAndParams("truncated").SetDelegate(callSite, func(call *Call, result interface{}, err error) {
		log = append(log, "callback")
	})
	waitDone(t, loop, h)

	if want := []string{"callback", "call-site", "default"}; !reflect.DeepEqual(log, want) {
		t.Errorf("got: %v; want %v", log, want)
	}
	var parseErr *ParseError
	if len(callSite.errs) != 1 || !errors.As(callSite.errs[0], &parseErr) {
		t.Fatalf("call-site got: %v; want *ParseError", callSite.errs)
	}
	if got, want := parseErr.Raw, `{"jsonrpc":"2.0","result":`; got != want {
		t.Errorf("got: %q; want %q", got, want)
	}
	if len(def.errs) != 1 || def.errs[0] != callSite.errs[0] {
		t.Errorf("default delegate got a different error: %v", def.errs)
	}
}

func TestDelegateChainStops(t *testing.T) {
	var log []string
	svc, loop := newLoopService(replyWith(`nope`), &failLog{name: "default", fallback: true, log: &log})

	h := svc.CallMethodWithNameAndParams("m").SetDelegate(&failLog{name: "call-site", log: &log}, nil)
	waitDone(t, loop, h)

	if want := []string{"call-site"}; !reflect.DeepEqual(log, want) {
		t.Errorf("got: %v; want %v", log, want)
	}
}

func TestDelegateWithoutCapability(t *testing.T) {
	var log []string
	svc, loop := newLoopService(replyWith(`nope`), &failLog{name: "default", log: &log})

	// plain does not implement ErrorHandler, so the failure goes straight
	// to the default delegate.
	h := svc.CallMethodWithNameAndParams("m").SetDelegate(&plain{}, nil)
	waitDone(t, loop, h)

	if want := []string{"default"}; !reflect.DeepEqual(log, want) {
		t.Errorf("got: %v; want %v", log, want)
	}
}

func TestDelegateFunc(t *testing.T) {
	var got []error
	fn := ErrorHandlerFunc(func(call *Call, err error) bool {
		got = append(got, err)
		return true
	})
	svc, loop := newLoopService(replyWith(`nope`), fn)

	h := svc.CallMethodWithNameAndParams("m").SetDelegate(nil, nil)
	waitDone(t, loop, h)
	if len(got) != 1 || !IsInternal(got[0]) {
		t.Errorf("got: %v; want one internal error", got)
	}
}

func TestWeakDelegate(t *testing.T) {
	var log []string
	def := &failLog{name: "default", log: &log}
	svc, loop := newLoopService(replyWith(`nope`), Weak(def))

	h := svc.CallMethodWithNameAndParams("m").SetDelegate(nil, nil)
	waitDone(t, loop, h)
	if want := []string{"default"}; !reflect.DeepEqual(log, want) {
		t.Errorf("got: %v; want %v", log, want)
	}
	runtime.KeepAlive(def)
}

func TestWeakDelegateCollected(t *testing.T) {
	var log []string
	ref := func() interface{} {
		return Weak(&failLog{name: "gone", log: &log})
	}()

	for i := 0; i < 10; i++ {
		if _, ok := errorHandlerOf(ref); !ok {
			break
		}
		runtime.GC()
	}
	if _, ok := errorHandlerOf(ref); ok {
		t.Fatal("weak delegate is still reachable")
	}

	// A collected delegate counts as absent.
	svc, loop := newLoopService(replyWith(`nope`), ref)
	h := svc.CallMethodWithNameAndParams("m").SetDelegate(nil, nil)
	waitDone(t, loop, h)
	if len(log) != 0 {
		t.Errorf("collected delegate was called: %v", log)
	}
}
