package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/leofalp/promptfn/core/schema"
)

// coercer validates a decoded JSON value against a descriptor and converts
// it to the canonical output representation:
//
//	string, enum -> string
//	int          -> int64
//	float        -> float64
//	bool         -> bool
//	class        -> *Object
//	list         -> []any
//	map          -> map[string]any
//	null         -> nil (optionals only)
type coercer struct {
	set *schema.Set
}

func (c *coercer) coerce(v any, t schema.Type, path string) (any, error) {
	switch t.Kind {
	case schema.KindOptional:
		if v == nil {
			return nil, nil
		}
		return c.coerce(v, *t.Elem, path)

	case schema.KindUnion:
		var firstErr error
		for _, option := range t.Options {
			out, err := c.coerce(v, option, path)
			if err == nil {
				return out, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return nil, firstErr
	}

	if v == nil {
		return nil, fieldErr(path, "null is not a valid %s", t)
	}

	switch t.Kind {
	case schema.KindString:
		switch x := v.(type) {
		case string:
			return x, nil
		case json.Number:
			return x.String(), nil
		case bool:
			return strconv.FormatBool(x), nil
		}
		return nil, fieldErr(path, "expected string, got %s", jsonKind(v))

	case schema.KindInt:
		text, ok := scalarText(v)
		if !ok {
			return nil, fieldErr(path, "expected int, got %s", jsonKind(v))
		}
		n, err := parseInt(text)
		if err != nil {
			return nil, fieldErr(path, "%q is not an int", text)
		}
		return n, nil

	case schema.KindFloat:
		text, ok := scalarText(v)
		if !ok {
			return nil, fieldErr(path, "expected float, got %s", jsonKind(v))
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fieldErr(path, "%q is not a float", text)
		}
		return f, nil

	case schema.KindBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			switch x {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
			return nil, fieldErr(path, "%q is not a bool", x)
		}
		return nil, fieldErr(path, "expected bool, got %s", jsonKind(v))

	case schema.KindEnum:
		e, _ := c.set.Enum(t.Name)
		s, ok := v.(string)
		if !ok {
			return nil, &EnumValueError{Path: path, Enum: t.Name, Value: fmt.Sprint(v)}
		}
		if !e.Has(s) {
			return nil, &EnumValueError{Path: path, Enum: t.Name, Value: s}
		}
		return s, nil

	case schema.KindClass:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fieldErr(path, "expected object for %s, got %s", t.Name, jsonKind(v))
		}
		return c.class(m, t.Name, path)

	case schema.KindList:
		items, ok := v.([]any)
		if !ok {
			// a lone value where a list is expected becomes a one-element list
			out, err := c.coerce(v, *t.Elem, path+"[0]")
			if err != nil {
				return nil, err
			}
			return []any{out}, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			elem, err := c.coerce(item, *t.Elem, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil

	case schema.KindMap:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fieldErr(path, "expected object for %s, got %s", t, jsonKind(v))
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(m))
		for _, k := range keys {
			val, err := c.coerce(m[k], *t.Elem, join(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil
	}

	return nil, fieldErr(path, "unsupported type %s", t)
}

func (c *coercer) class(m map[string]any, name, path string) (*Object, error) {
	class, _ := c.set.Class(name)
	obj := newObject(name, len(class.Fields))

	for _, f := range class.Fields {
		fieldPath := join(path, f.Name)

		raw, ok := m[f.Key()]
		if !ok && f.Alias != "" {
			raw, ok = m[f.Name]
		}
		if !ok {
			if f.Type.IsOptional() {
				obj.set(f.Name, nil)
				continue
			}
			return nil, fieldErr(fieldPath, "missing required field")
		}

		val, err := c.coerce(raw, f.Type, fieldPath)
		if err != nil {
			return nil, err
		}
		obj.set(f.Name, val)
	}
	return obj, nil
}

// parseInt accepts a base-10 integer, or a float literal with no fractional
// part such as "3.0". Anything else, including trailing text, is rejected.
// Values outside the int64 range are rejected rather than wrapped.
func parseInt(text string) (int64, error) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not integral", text)
	}
	// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
	if f >= 1<<63 || f < -(1<<63) {
		return 0, fmt.Errorf("%q is out of the int64 range", text)
	}
	return int64(f), nil
}

func scalarText(v any) (string, bool) {
	switch x := v.(type) {
	case json.Number:
		return x.String(), true
	case string:
		return x, true
	}
	return "", false
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
