package jsonrpc

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// NodeUnmarshaler is implemented by result types which can construct
// themselves from a generic JSON node: nil, bool, float64, json.Number (for
// integers beyond float64 precision), string, []interface{} or
// map[string]interface{}.
type NodeUnmarshaler interface {
	UnmarshalNode(node interface{}) error
}

// NodeMarshaler is optionally implemented by values which can convert
// themselves back into a generic JSON node. Call params implementing it are
// encoded through MarshalNode.
type NodeMarshaler interface {
	MarshalNode() (interface{}, error)
}

// ResultType describes the type a call's result is converted into. The zero
// value requests no conversion: the generic JSON node is delivered as is.
type ResultType struct {
	typ reflect.Type
}

// ResultTypeOf returns the ResultType for the type of v. Pointers are
// dereferenced, so ResultTypeOf(Person{}) and ResultTypeOf((*Person)(nil))
// are equivalent; both construct *Person results.
func ResultTypeOf(v interface{}) ResultType {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return ResultType{typ: t}
}

// TypeFor returns the ResultType for T.
func TypeFor[T any]() ResultType {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return ResultType{typ: t}
}

// IsZero returns true if no result type is set.
func (rt ResultType) IsZero() bool {
	return rt.typ == nil
}

// Name returns the name of the constructed type.
func (rt ResultType) Name() string {
	if rt.typ == nil {
		return ""
	}
	return reflect.PtrTo(rt.typ).String()
}

// Construct builds one instance from node.
func (rt ResultType) Construct(node interface{}) (interface{}, error) {
	if rt.typ == nil {
		return node, nil
	}
	ptr := reflect.New(rt.typ)
	u, ok := ptr.Interface().(NodeUnmarshaler)
	if !ok {
		return nil, &ConversionError{
			Node:     node,
			TypeName: rt.Name(),
			Reason:   "type does not implement UnmarshalNode",
		}
	}
	if err := u.UnmarshalNode(node); err != nil {
		return nil, &ConversionError{
			Node:     node,
			TypeName: rt.Name(),
			Err:      err,
		}
	}
	return ptr.Interface(), nil
}

// ConstructAll builds one instance per element of nodes and returns them as
// a typed slice ([]*T) in input order.
func (rt ResultType) ConstructAll(nodes []interface{}) (interface{}, error) {
	if rt.typ == nil {
		return nodes, nil
	}
	out := reflect.MakeSlice(reflect.SliceOf(reflect.PtrTo(rt.typ)), 0, len(nodes))
	for i, node := range nodes {
		v, err := rt.Construct(node)
		if err != nil {
			if convErr, ok := err.(*ConversionError); ok && convErr.Reason == "" {
				convErr.Reason = fmt.Sprintf("element %d", i)
			}
			return nil, err
		}
		out = reflect.Append(out, reflect.ValueOf(v))
	}
	return out.Interface(), nil
}

// MarshalNode converts v into a generic JSON node, through NodeMarshaler if
// v implements it and through a JSON round trip otherwise.
func MarshalNode(v interface{}) (interface{}, error) {
	if m, ok := v.(NodeMarshaler); ok {
		return m.MarshalNode()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return ParseNode(data)
}

// encodeParams returns the JSON encoding of positional params, converting
// NodeMarshaler values first.
func encodeParams(params []interface{}) (json.RawMessage, error) {
	nodes := make([]interface{}, len(params))
	for i, p := range params {
		if m, ok := p.(NodeMarshaler); ok {
			node, err := m.MarshalNode()
			if err != nil {
				return nil, fmt.Errorf("param %d: %w", i, err)
			}
			nodes[i] = node
			continue
		}
		nodes[i] = p
	}
	return json.Marshal(nodes)
}
