package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/leofalp/promptfn/core/schema"
)

// Deserialize extracts the payload from raw model output and validates it
// against target. See the package documentation for the canonical Go
// representation of each kind.
//
// A string target returns the trimmed text itself. Other targets are
// searched for in the whole text, inside code fences and in each balanced
// {...} / [...] span, in that order; the first candidate that parses and
// validates wins. When candidates parse but none validates, the error of
// the most plausible candidate is returned (one whose JSON kind matches the
// target and that needed no repair).
func Deserialize(raw string, target schema.Type, set *schema.Set) (any, error) {
	if err := set.Check(target); err != nil {
		return nil, &DeserializationError{Reason: "invalid target type", Err: err}
	}
	c := &coercer{set: set}

	var bareErr error
	switch target.Kind {
	case schema.KindString:
		return unquoteText(raw), nil
	case schema.KindEnum, schema.KindInt, schema.KindFloat, schema.KindBool:
		v, err := c.coerce(bareText(raw), target, "")
		if err == nil {
			return v, nil
		}
		bareErr = err
	}

	var best *attempt
	for _, candidate := range extractCandidates(raw) {
		v, repaired, err := decodeCandidate(candidate)
		if err != nil {
			continue
		}

		out, err := c.coerce(v, target, "")
		if err == nil {
			return out, nil
		}

		// retry once with schema-style {"type": ..., "value": ...} wrappers removed
		if unwrapped := recursiveUnwrap(v); !sameJSON(unwrapped, v) {
			if out, uerr := c.coerce(unwrapped, target, ""); uerr == nil {
				return out, nil
			}
		}

		a := &attempt{err: err, rank: rankCandidate(v, target, repaired)}
		if best == nil || a.rank > best.rank {
			best = a
		}
	}

	if acceptsText(target) {
		return c.coerce(unquoteText(raw), target, "")
	}
	if best != nil {
		return nil, best.err
	}
	if bareErr != nil {
		return nil, bareErr
	}
	return nil, &DeserializationError{Err: ErrNoPayload}
}

type attempt struct {
	err  error
	rank int
}

func rankCandidate(v any, target schema.Type, repaired bool) int {
	rank := 0
	if !repaired {
		rank++
	}
	switch v.(type) {
	case map[string]any:
		if target.Kind == schema.KindClass || target.Kind == schema.KindMap {
			rank += 2
		}
	case []any:
		if target.Kind == schema.KindList {
			rank += 2
		}
	}
	return rank
}

// decodeCandidate decodes s as a single JSON value. Candidates that look like
// an object or array get a second chance through jsonrepair, which fixes
// trailing commas, single quotes, unquoted keys, comments and truncation.
func decodeCandidate(s string) (any, bool, error) {
	v, err := decodeJSON(s)
	if err == nil {
		return v, false, nil
	}
	if s[0] != '{' && s[0] != '[' {
		return nil, false, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(s)
	if repairErr != nil {
		return nil, false, fmt.Errorf("unmarshal error: %w, repair error: %v", err, repairErr)
	}
	v, err = decodeJSON(repaired)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func sameJSON(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// unquoteText trims raw and, when it is a single JSON string literal,
// returns the decoded string.
func unquoteText(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var out string
		if err := json.Unmarshal([]byte(s), &out); err == nil {
			return out
		}
	}
	return s
}

// bareText trims whitespace and one layer of quotes or backticks, for
// scalar answers such as `Positive` or "42".
func bareText(raw string) string {
	s := strings.TrimSpace(raw)
	for _, q := range []string{"`", `"`, "'"} {
		if len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// acceptsText reports whether free text is a valid fallback for t, i.e. t is
// a string or a union/optional with a string alternative.
func acceptsText(t schema.Type) bool {
	switch t.Kind {
	case schema.KindString:
		return true
	case schema.KindOptional:
		return acceptsText(*t.Elem)
	case schema.KindUnion:
		for _, o := range t.Options {
			if acceptsText(o) {
				return true
			}
		}
	}
	return false
}

// Deserializer binds a target descriptor to a Go output type T. The value
// produced by Deserialize is converted to T through encoding/json, so T
// should use json tags matching the declared field names. When T is any,
// the canonical representation is returned unchanged.
type Deserializer[T any] struct {
	target schema.Type
	set    *schema.Set
}

// NewDeserializer checks that target only references declarations in set.
func NewDeserializer[T any](target schema.Type, set *schema.Set) (*Deserializer[T], error) {
	if err := set.Check(target); err != nil {
		return nil, fmt.Errorf("deserializer for %s: %w", target, err)
	}
	return &Deserializer[T]{target: target, set: set}, nil
}

// Target returns the descriptor the deserializer validates against.
func (d *Deserializer[T]) Target() schema.Type {
	return d.target
}

// FromString parses raw model output into T.
func (d *Deserializer[T]) FromString(raw string) (T, error) {
	var result T

	v, err := Deserialize(raw, d.target, d.set)
	if err != nil {
		return result, err
	}

	if out, ok := v.(T); ok {
		return out, nil
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return result, &DeserializationError{Reason: fmt.Sprintf("cannot encode %s value", d.target), Err: err}
	}
	if err := json.Unmarshal(encoded, &result); err != nil {
		return result, &DeserializationError{Reason: fmt.Sprintf("cannot decode %s into %T", d.target, result), Err: err}
	}
	return result, nil
}
