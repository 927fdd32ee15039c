package marker

import (
	"fmt"
	"strings"

	"github.com/leofalp/promptfn/core/schema"
)

const indentUnit = "  "

// EnumListing renders the legal values of e, one per line, under a header:
//
//	Sentiment
//	----
//	- Positive
//	- Negative: a description
//
// An enum without values renders as the header and rule only.
func EnumListing(e *schema.Enum) string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteString("\n----")
	for _, v := range e.Values {
		b.WriteString("\n- ")
		b.WriteString(v.Name)
		if v.Description != "" {
			b.WriteString(": ")
			b.WriteString(oneLine(v.Description))
		}
	}
	return b.String()
}

// OutputSketch renders a JSON-like sketch of t for the model to imitate.
// Field hints are not valid JSON on purpose (bool, int, "X as string"), and
// descriptions appear as trailing // comments.
func OutputSketch(t schema.Type, set *schema.Set) string {
	s := &sketcher{set: set, visiting: map[string]bool{}}
	return s.hint(t, 0)
}

type sketcher struct {
	set      *schema.Set
	visiting map[string]bool
}

func (s *sketcher) hint(t schema.Type, depth int) string {
	switch t.Kind {
	case schema.KindEnum:
		return fmt.Sprintf("%q", t.Name+" as string")
	case schema.KindClass:
		return s.class(t.Name, depth)
	case schema.KindList:
		elem := s.hint(*t.Elem, depth)
		if t.Elem.Kind == schema.KindUnion || t.Elem.Kind == schema.KindOptional {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case schema.KindMap:
		return "map<string, " + s.hint(*t.Elem, depth) + ">"
	case schema.KindOptional:
		return s.hint(*t.Elem, depth) + " | null"
	case schema.KindUnion:
		parts := make([]string, len(t.Options))
		for i, o := range t.Options {
			parts[i] = s.hint(o, depth)
		}
		return strings.Join(parts, " | ")
	default:
		return t.Kind.String()
	}
}

func (s *sketcher) class(name string, depth int) string {
	c, ok := s.set.Class(name)
	if !ok || s.visiting[name] {
		// recursive reference: name the class instead of expanding it again
		return name
	}
	s.visiting[name] = true
	defer delete(s.visiting, name)

	inner := strings.Repeat(indentUnit, depth+1)

	var b strings.Builder
	b.WriteString("{")
	for i, f := range c.Fields {
		b.WriteString("\n")
		b.WriteString(inner)
		fmt.Fprintf(&b, "%q: %s", f.Key(), s.hint(f.Type, depth+1))
		if i < len(c.Fields)-1 {
			b.WriteString(",")
		}
		if f.Description != "" {
			b.WriteString(" // ")
			b.WriteString(oneLine(f.Description))
		}
	}
	if len(c.Fields) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Repeat(indentUnit, depth))
	}
	b.WriteString("}")
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FromSchema builds the marker table for a function returning output: one
// entry named OutputName holding the output sketch, plus one entry per enum
// reachable from output, named after the enum.
func FromSchema(output schema.Type, set *schema.Set) (*Table, error) {
	if err := set.Check(output); err != nil {
		return nil, fmt.Errorf("output type %s: %w", output, err)
	}

	entries := []Entry{{Token: Token(OutputName), Text: OutputSketch(output, set)}}
	for _, e := range set.ReachableEnums(output) {
		entries = append(entries, Entry{Token: Token(e.Name), Text: EnumListing(e)})
	}
	return New(entries...)
}
