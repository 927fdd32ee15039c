package schema

import (
	"fmt"
)

// Set is an immutable collection of enum and class declarations.
type Set struct {
	enums   map[string]*Enum
	classes map[string]*Class
}

// NewSet validates and indexes the given declarations. Names must be unique
// across enums and classes, and every class field must reference only
// declared enums and classes.
func NewSet(enums []Enum, classes []Class) (*Set, error) {
	s := &Set{
		enums:   make(map[string]*Enum, len(enums)),
		classes: make(map[string]*Class, len(classes)),
	}

	for i := range enums {
		e := enums[i]
		if e.Name == "" {
			return nil, fmt.Errorf("enum #%d has no name", i)
		}
		if _, dup := s.enums[e.Name]; dup {
			return nil, fmt.Errorf("enum %q declared twice", e.Name)
		}
		seen := make(map[string]struct{}, len(e.Values))
		for _, v := range e.Values {
			if _, dup := seen[v.Name]; dup {
				return nil, fmt.Errorf("enum %q declares value %q twice", e.Name, v.Name)
			}
			seen[v.Name] = struct{}{}
		}
		s.enums[e.Name] = &e
	}

	for i := range classes {
		c := classes[i]
		if c.Name == "" {
			return nil, fmt.Errorf("class #%d has no name", i)
		}
		if _, dup := s.classes[c.Name]; dup {
			return nil, fmt.Errorf("class %q declared twice", c.Name)
		}
		if _, clash := s.enums[c.Name]; clash {
			return nil, fmt.Errorf("class %q has the same name as an enum", c.Name)
		}
		s.classes[c.Name] = &c
	}

	for i := range classes {
		c := s.classes[classes[i].Name]
		keys := make(map[string]struct{}, len(c.Fields))
		for _, f := range c.Fields {
			if _, dup := keys[f.Key()]; dup {
				return nil, fmt.Errorf("class %q: field key %q used twice", c.Name, f.Key())
			}
			keys[f.Key()] = struct{}{}
			if err := s.Check(f.Type); err != nil {
				return nil, fmt.Errorf("class %q field %q: %w", c.Name, f.Name, err)
			}
		}
	}

	return s, nil
}

// MustNewSet is like NewSet but panics on error. Intended for generated code
// where the declarations are static.
func MustNewSet(enums []Enum, classes []Class) *Set {
	s, err := NewSet(enums, classes)
	if err != nil {
		panic(err)
	}
	return s
}

// Enum returns the enum declared under name.
func (s *Set) Enum(name string) (*Enum, bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.enums[name]
	return e, ok
}

// Class returns the class declared under name.
func (s *Set) Class(name string) (*Class, bool) {
	if s == nil {
		return nil, false
	}
	c, ok := s.classes[name]
	return c, ok
}

// Check verifies that every enum and class referenced by t is declared.
func (s *Set) Check(t Type) error {
	switch t.Kind {
	case KindEnum:
		if _, ok := s.Enum(t.Name); !ok {
			return fmt.Errorf("unknown enum %q", t.Name)
		}
	case KindClass:
		if _, ok := s.Class(t.Name); !ok {
			return fmt.Errorf("unknown class %q", t.Name)
		}
	case KindList, KindMap, KindOptional:
		if t.Elem == nil {
			return fmt.Errorf("%s type without element type", t.Kind)
		}
		return s.Check(*t.Elem)
	case KindUnion:
		if len(t.Options) == 0 {
			return fmt.Errorf("union without alternatives")
		}
		for _, o := range t.Options {
			if err := s.Check(o); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReachableEnums returns the enums reachable from t, in first-visit order.
// Classes are walked once, so recursive classes terminate.
func (s *Set) ReachableEnums(t Type) []*Enum {
	var out []*Enum
	seenEnum := map[string]bool{}
	seenClass := map[string]bool{}

	var walk func(Type)
	walk = func(t Type) {
		switch t.Kind {
		case KindEnum:
			if seenEnum[t.Name] {
				return
			}
			seenEnum[t.Name] = true
			if e, ok := s.Enum(t.Name); ok {
				out = append(out, e)
			}
		case KindClass:
			if seenClass[t.Name] {
				return
			}
			seenClass[t.Name] = true
			if c, ok := s.Class(t.Name); ok {
				for _, f := range c.Fields {
					walk(f.Type)
				}
			}
		case KindList, KindMap, KindOptional:
			if t.Elem != nil {
				walk(*t.Elem)
			}
		case KindUnion:
			for _, o := range t.Options {
				walk(o)
			}
		}
	}
	walk(t)
	return out
}
