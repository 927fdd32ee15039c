package parse

import (
	"errors"
	"fmt"
)

// ErrNoPayload is wrapped by the DeserializationError returned when the
// response contains nothing that parses as JSON.
var ErrNoPayload = errors.New("no JSON payload found")

// DeserializationError reports a response payload that is missing or does
// not match the target descriptor. Path names the offending field using dots
// for class fields and [i] for list elements; it is empty for the root.
type DeserializationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DeserializationError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Path == "" {
		return "deserialize: " + msg
	}
	return fmt.Sprintf("deserialize: field %q: %s", e.Path, msg)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// EnumValueError reports a value that is not among an enum's declared values.
type EnumValueError struct {
	Path  string
	Enum  string
	Value string
}

func (e *EnumValueError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("deserialize: %q is not a value of enum %s", e.Value, e.Enum)
	}
	return fmt.Sprintf("deserialize: field %q: %q is not a value of enum %s", e.Path, e.Value, e.Enum)
}

func fieldErr(path, format string, args ...any) *DeserializationError {
	return &DeserializationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
