package parse

import (
	"bytes"
	"encoding/json"
)

// Object is a deserialized class instance. It keeps the class's declared
// field order, which MarshalJSON preserves. Keys are the declared field
// names, not their wire aliases.
type Object struct {
	Class  string
	keys   []string
	values map[string]any
}

func newObject(class string, size int) *Object {
	return &Object{Class: class, keys: make([]string, 0, size), values: make(map[string]any, size)}
}

func (o *Object) set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value of a field.
func (o *Object) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Keys returns the field names in declared order.
func (o *Object) Keys() []string {
	return o.keys
}

// Map returns the fields as a plain map, converting nested objects too.
func (o *Object) Map() map[string]any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = plain(o.values[k])
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.Map()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the object with fields in declared order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
