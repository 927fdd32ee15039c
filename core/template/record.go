package template

import (
	"fmt"
	"reflect"
	"sort"
)

// Record is a structured input value whose fields can be read by name.
// Fields lists the names in the order they should be printed when the whole
// record is interpolated.
type Record interface {
	Fields() []string
	Field(name string) (any, bool)
}

// Field is one entry of an accessor table: a field name and the function
// that reads it from a T. Get may return another Record to allow nested
// paths such as "arg.a.c".
type Field[T any] struct {
	Name string
	Get  func(T) any
}

// Accessors is the field accessor table of a record type T. It is built once,
// typically as a package-level variable next to the type, and binds values
// of T into Records without reflection.
type Accessors[T any] struct {
	order []string
	get   map[string]func(T) any
}

// NewAccessors builds an accessor table. It panics if a name is repeated,
// since tables are static declarations.
func NewAccessors[T any](fields ...Field[T]) *Accessors[T] {
	a := &Accessors[T]{get: make(map[string]func(T) any, len(fields))}
	for _, f := range fields {
		if _, dup := a.get[f.Name]; dup {
			panic(fmt.Sprintf("template: duplicate accessor %q", f.Name))
		}
		a.order = append(a.order, f.Name)
		a.get[f.Name] = f.Get
	}
	return a
}

// Bind wraps v as a Record.
func (a *Accessors[T]) Bind(v T) Record {
	return bound[T]{acc: a, v: v}
}

type bound[T any] struct {
	acc *Accessors[T]
	v   T
}

func (b bound[T]) Fields() []string {
	return b.acc.order
}

func (b bound[T]) Field(name string) (any, bool) {
	get, ok := b.acc.get[name]
	if !ok {
		return nil, false
	}
	return get(b.v), true
}

// Map adapts decoded JSON or YAML data to a Record. Nested maps are exposed
// as Map values. Fields are listed in lexical order since maps carry none.
type Map map[string]any

func (m Map) Fields() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Map) Field(name string) (any, bool) {
	v, ok := m[name]
	if !ok {
		return nil, false
	}
	return normalize(v), true
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return Map(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// asRecord reports whether v can be traversed by field name. A nil pointer
// is not a record even when its type implements Record.
func asRecord(v any) (Record, bool) {
	if isNil(v) {
		return nil, false
	}
	switch x := v.(type) {
	case Record:
		return x, true
	case map[string]any:
		return Map(x), true
	default:
		return nil, false
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
