// Package extract pulls a JSON payload out of free-form model output.
//
// Models are asked to reply with JSON only, but replies routinely arrive
// wrapped in prose or code fences. The payload is located with a greedy
// heuristic: everything from the first opening bracket to the last closing
// bracket of the requested kind. This is fragile. Two separate JSON values in
// one reply, or a stray closing bracket in trailing prose, produce a span that
// fails to parse. Such replies are reported as MalformedPayload and never
// repaired or evaluated permissively.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/eadteachers/teachkit/internal/apperr"
)

// Shape is the top-level JSON kind a caller expects.
type Shape int

const (
	Array Shape = iota
	Object
)

func (s Shape) String() string {
	if s == Object {
		return "object"
	}
	return "array"
}

func (s Shape) brackets() (byte, byte) {
	if s == Object {
		return '{', '}'
	}
	return '[', ']'
}

// Span returns the greedy bracketed substring of raw for the given shape.
func Span(raw string, shape Shape) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperr.New(apperr.KindEmptyResponse, "extract", nil)
	}

	opening, closing := shape.brackets()
	start := strings.IndexByte(raw, opening)
	end := strings.LastIndexByte(raw, closing)
	if start < 0 || end < 0 || end < start {
		return "", apperr.Errorf(apperr.KindNoStructuredPayload, "extract",
			"no %c...%c span in response", opening, closing)
	}
	return raw[start : end+1], nil
}

// Structured extracts and strictly parses the payload of the requested shape.
// The result is a []any for Array and a map[string]any for Object.
func Structured(raw string, shape Shape) (any, error) {
	span, err := Span(raw, shape)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return nil, apperr.New(apperr.KindMalformedPayload, "extract", err)
	}

	switch parsed.(type) {
	case []any:
		if shape == Array {
			return parsed, nil
		}
	case map[string]any:
		if shape == Object {
			return parsed, nil
		}
	}
	return nil, apperr.Errorf(apperr.KindUnexpectedShape, "extract",
		"expected top-level %s, got %T", shape, parsed)
}

// Decode extracts the payload and decodes it into a value of type T.
// Syntax errors are MalformedPayload; values that parse but do not fit T
// are UnexpectedShape.
func Decode[T any](raw string, shape Shape) (T, error) {
	var out T
	if _, err := Structured(raw, shape); err != nil {
		return out, err
	}

	// Structured already proved the span is valid JSON of the right kind.
	span, _ := Span(raw, shape)
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, apperr.New(apperr.KindUnexpectedShape, "decode",
				fmt.Errorf("field %q: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value))
		}
		return out, apperr.New(apperr.KindUnexpectedShape, "decode", err)
	}
	return out, nil
}
