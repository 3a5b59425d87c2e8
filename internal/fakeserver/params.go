package fakeserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// parsePositionalArguments decodes the params of a request into one value
// per argument type. Only positional (array) params are supported.
func parsePositionalArguments(rawArgs json.RawMessage, types []reflect.Type) ([]reflect.Value, error) {
	var args []json.RawMessage
	if len(rawArgs) > 0 && string(rawArgs) != "null" {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return nil, err
		}
	}
	if len(args) > len(types) {
		return nil, errors.New("too many arguments")
	}
	if len(args) < len(types) {
		return nil, errors.New("not enough arguments")
	}

	values := make([]reflect.Value, 0, len(types))
	for i, arg := range args {
		value := reflect.New(types[i])
		if err := json.Unmarshal(arg, value.Interface()); err != nil {
			return nil, fmt.Errorf("invalid argument %d: %w", i, err)
		}
		values = append(values, value.Elem())
	}
	return values, nil
}
