package jsonrpc

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestCallEnvelope(t *testing.T) {
	svc := NewService("", Options{})
	call, err := svc.NewCall("echo", "hi")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := call.MarshalJSON()
	if got, want := string(body), `{"jsonrpc":"2.0","method":"echo","params":["hi"],"id":1}`; got != want {
		t.Errorf("got: %s; want %s", got, want)
	}

	call, err = svc.NewCall("ping")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = call.MarshalJSON()
	if got, want := string(body), `{"jsonrpc":"2.0","method":"ping","params":[],"id":2}`; got != want {
		t.Errorf("got: %s; want %s", got, want)
	}

	svc1 := NewService("", Options{Version: Version1})
	call, err = svc1.NewCall("echo", "hi", 2)
	if err != nil {
		t.Fatal(err)
	}
	body, _ = call.MarshalJSON()
	if got, want := string(body), `{"method":"echo","params":["hi",2],"id":1}`; got != want {
		t.Errorf("got: %s; want %s", got, want)
	}
	if got, want := call.Version(), Version1; got != want {
		t.Errorf("got: %s; want %s", got, want)
	}
}

func TestCallEnvelopeRoundTrip(t *testing.T) {
	cases := []struct {
		method string
		params []interface{}
	}{
		{"a", nil},
		{"getUserDetails", []interface{}{"user1234"}},
		{"sum", []interface{}{1, 2.5, -3}},
		{"mixed", []interface{}{nil, true, "x", []interface{}{1, "two"}, map[string]interface{}{"k": "v"}}},
		{"unicode.method/π", []interface{}{"é\n\t\"quoted\""}},
	}

	for _, version := range []ProtocolVersion{Version1, Version2} {
		svc := NewService("", Options{Version: version})
		for _, tc := range cases {
			call, err := svc.NewCall(tc.method, tc.params...)
			if err != nil {
				t.Fatal(err)
			}
			body, err := json.Marshal(call)
			if err != nil {
				t.Fatal(err)
			}

			method, params, id, err := ParseRequest(body)
			if err != nil {
				t.Fatal(err)
			}
			if method != tc.method {
				t.Errorf("[%s] got method: %q; want %q", version, method, tc.method)
			}
			wantParams := []interface{}{}
			for _, p := range tc.params {
				node, err := MarshalNode(p)
				if err != nil {
					t.Fatal(err)
				}
				wantParams = append(wantParams, node)
			}
			if !reflect.DeepEqual(params, wantParams) {
				t.Errorf("[%s] got params: %#v; want %#v", version, params, wantParams)
			}
			if got, want := string(id), string(call.ID()); got != want {
				t.Errorf("[%s] got id: %s; want %s", version, got, want)
			}
		}
	}
}

func TestCallImmutable(t *testing.T) {
	svc := NewService("", Options{})
	params := []interface{}{"a", "b"}
	call, err := svc.NewCall("m", params...)
	if err != nil {
		t.Fatal(err)
	}
	params[0] = "changed"
	got := call.Params()
	got[1] = "changed too"
	if want := []interface{}{"a", "b"}; !reflect.DeepEqual(call.Params(), want) {
		t.Errorf("got: %v; want %v", call.Params(), want)
	}
}

func TestNewCallInvalid(t *testing.T) {
	svc := NewService("", Options{})
	if _, err := svc.NewCall(""); err != ErrEmptyMethod {
		t.Errorf("got: %v; want %v", err, ErrEmptyMethod)
	}
	if _, err := svc.NewCall("m", make(chan int)); err == nil {
		t.Error("expected encoding error for channel param")
	}
	var unsupported *json.UnsupportedTypeError
	if _, err := svc.NewCall("m", func() {}); !errors.As(err, &unsupported) {
		t.Errorf("got: %v; want *json.UnsupportedTypeError", err)
	}
}

func TestCallNodeMarshalerParams(t *testing.T) {
	svc := NewService("", Options{})
	call, err := svc.NewCall("save", &person{First: "Ada", Last: "Lovelace"})
	if err != nil {
		t.Fatal(err)
	}
	body, _ := call.MarshalJSON()
	want := `{"jsonrpc":"2.0","method":"save","params":[{"firstname":"Ada","lastname":"Lovelace"}],"id":1}`
	if got := string(body); got != want {
		t.Errorf("got: %s; want %s", got, want)
	}
}

func TestIDs(t *testing.T) {
	seq := &SequentialIDs{}
	if got, want := seq.NextID(), int64(1); got != want {
		t.Errorf("got: %v; want %v", got, want)
	}
	if got, want := seq.NextID(), int64(2); got != want {
		t.Errorf("got: %v; want %v", got, want)
	}

	svc := NewService("", Options{IDs: UUIDs{}})
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		call, err := svc.NewCall("m")
		if err != nil {
			t.Fatal(err)
		}
		var id string
		if err := json.Unmarshal(call.ID(), &id); err != nil {
			t.Fatalf("expected string id: %s", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id: %s", id)
		}
		seen[id] = true
	}
}

func TestProtocolVersionFlag(t *testing.T) {
	var v ProtocolVersion
	for input, want := range map[string]ProtocolVersion{"1": Version1, "1.0": Version1, "2.0": Version2} {
		if err := v.UnmarshalFlag(input); err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Errorf("got: %s; want %s", v, want)
		}
	}
	if err := v.UnmarshalFlag("3.0"); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestCallLargeIntegerRoundTrip(t *testing.T) {
	svc := NewService("", Options{IDs: fixedID(9007199254740993)})
	call, err := svc.NewCall("big", int64(9007199254740993), uint64(12345678901234567890), 1.5)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := call.MarshalJSON()
	want := `{"jsonrpc":"2.0","method":"big","params":[9007199254740993,12345678901234567890,1.5],"id":9007199254740993}`
	if got := string(body); got != want {
		t.Errorf("got: %s; want %s", got, want)
	}

	_, params, id, err := ParseRequest(body)
	if err != nil {
		t.Fatal(err)
	}
	wantParams := []interface{}{json.Number("9007199254740993"), json.Number("12345678901234567890"), 1.5}
	if !reflect.DeepEqual(params, wantParams) {
		t.Errorf("got: %#v; want %#v", params, wantParams)
	}
	if got, want := string(id), "9007199254740993"; got != want {
		t.Errorf("got: %s; want %s", got, want)
	}
}

func TestParseNode(t *testing.T) {
	node, err := ParseNode([]byte(` {"a":[1,-9007199254740993,2.5e3,null]} `))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{"a": []interface{}{float64(1), json.Number("-9007199254740993"), float64(2500), nil}}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("got: %#v; want %#v", node, want)
	}

	for _, bad := range []string{``, `{"a":1}x`, `{"a":1} {}`, `[1,`} {
		if _, err := ParseNode([]byte(bad)); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}
