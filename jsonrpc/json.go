package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Helpers for JSON parsing

// isArray returns true if the message is a JSON array (starts
// with '[', spaces skipped).
func isArray(raw json.RawMessage) bool {
	for _, b := range raw {
		if isSpace(b) {
			continue
		}
		return b == '['
	}
	return false
}

// isSpace returns true if the byte is considered a space in JSON syntax.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// compactID returns the canonical form of an id token, used as a pending
// lookup key and for correlation checks.
func compactID(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// maxExactInt is the largest integer magnitude a float64 holds exactly.
const maxExactInt = 1 << 53

// ParseNode decodes data into a generic JSON node. Numbers become float64,
// except integers beyond float64 precision which stay json.Number so that
// ids, params and results keep their exact value.
func ParseNode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var node interface{}
	if err := dec.Decode(&node); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid data after top-level value")
	}
	return normalizeNumbers(node), nil
}

func normalizeNumbers(node interface{}) interface{} {
	switch v := node.(type) {
	case json.Number:
		return numberNode(v)
	case []interface{}:
		for i := range v {
			v[i] = normalizeNumbers(v[i])
		}
	case map[string]interface{}:
		for k, elem := range v {
			v[k] = normalizeNumbers(elem)
		}
	}
	return node
}

func numberNode(n json.Number) interface{} {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil || i > maxExactInt || i < -maxExactInt {
			return n
		}
	}
	f, err := n.Float64()
	if err != nil {
		return n
	}
	return f
}
