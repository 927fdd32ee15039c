package schema

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Type.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindEnum
	KindClass
	KindList
	KindMap
	KindOptional
	KindUnion
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindClass:
		return "class"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindOptional:
		return "optional"
	case KindUnion:
		return "union"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is a descriptor for a value the model is expected to produce.
// Name is set for enums and classes, Elem for lists, maps (value type) and
// optionals, Options for unions.
type Type struct {
	Kind    Kind
	Name    string
	Elem    *Type
	Options []Type
}

// String returns the schema-language spelling of the type, e.g. "int[]",
// "Sentiment?" or "int | string".
func (t Type) String() string {
	switch t.Kind {
	case KindEnum, KindClass:
		return t.Name
	case KindList:
		return wrapUnion(*t.Elem) + "[]"
	case KindOptional:
		return wrapUnion(*t.Elem) + "?"
	case KindMap:
		return "map<string, " + t.Elem.String() + ">"
	case KindUnion:
		parts := make([]string, len(t.Options))
		for i, o := range t.Options {
			parts[i] = o.String()
		}
		return strings.Join(parts, " | ")
	default:
		return t.Kind.String()
	}
}

func wrapUnion(t Type) string {
	if t.Kind == KindUnion {
		return "(" + t.String() + ")"
	}
	return t.String()
}

// IsOptional reports whether a missing or null value is acceptable.
func (t Type) IsOptional() bool {
	if t.Kind == KindOptional {
		return true
	}
	if t.Kind == KindUnion {
		for _, o := range t.Options {
			if o.IsOptional() {
				return true
			}
		}
	}
	return false
}

// Constructors for the common descriptor shapes.

func String() Type { return Type{Kind: KindString} }
func Int() Type    { return Type{Kind: KindInt} }
func Float() Type  { return Type{Kind: KindFloat} }
func Bool() Type   { return Type{Kind: KindBool} }

// EnumRef refers to a declared enum by name.
func EnumRef(name string) Type { return Type{Kind: KindEnum, Name: name} }

// ClassRef refers to a declared class by name.
func ClassRef(name string) Type { return Type{Kind: KindClass, Name: name} }

// List returns a list of elem.
func List(elem Type) Type { return Type{Kind: KindList, Elem: &elem} }

// Map returns a string-keyed map with values of type elem.
func Map(elem Type) Type { return Type{Kind: KindMap, Elem: &elem} }

// Optional marks elem as nullable.
func Optional(elem Type) Type { return Type{Kind: KindOptional, Elem: &elem} }

// Union returns a union whose alternatives are tried in the given order.
func Union(options ...Type) Type { return Type{Kind: KindUnion, Options: options} }

// EnumValue is a single legal value of an enum.
type EnumValue struct {
	Name        string
	Description string
}

// Enum is a closed set of named string values.
type Enum struct {
	Name   string
	Values []EnumValue
}

// Has reports whether value is one of the enum's declared values. The match
// is case-sensitive.
func (e *Enum) Has(value string) bool {
	for _, v := range e.Values {
		if v.Name == value {
			return true
		}
	}
	return false
}

// Field is a named, typed member of a class.
type Field struct {
	Name        string
	Alias       string // key used on the wire, defaults to Name
	Type        Type
	Description string
}

// Key returns the JSON key the model is asked to produce for this field.
func (f Field) Key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Class is a record type with an ordered list of fields.
type Class struct {
	Name   string
	Fields []Field
}
