// Package template renders prompt templates. A template is plain text with
// two kinds of placeholders delimited by braces:
//
//   - field placeholders, a dotted path into the input rooted at a binding
//     name: "{arg.a.c}"
//   - marker placeholders, reserved tokens resolved from a static table:
//     "{//BAML_CLIENT_REPLACE_ME_MAGIC_output//}"
//
// "{{" and "}}" produce literal braces. Everything else is copied byte for
// byte, so whitespace, tabs and blank lines survive rendering unchanged.
//
// Templates are compiled once with [Compile] and rendered any number of times
// concurrently with [Template.Render].
package template

import (
	"strconv"
	"strings"
)

// Resolver looks up the replacement text of a marker token.
// *marker.Table implements it.
type Resolver interface {
	Resolve(token string) (string, bool)
}

type segmentKind int

const (
	segLiteral segmentKind = iota
	segField
	segMarker
)

type segment struct {
	kind segmentKind
	text string   // literal text, marker token, or the raw field path
	path []string // field path split on "."
}

// Template is a compiled prompt template.
type Template struct {
	source   string
	segments []segment
}

// Compile scans source once and splits it into literal and placeholder
// segments.
func Compile(source string) (*Template, error) {
	t := &Template{source: source}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{kind: segLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '{' && i+1 < len(source) && source[i+1] == '{':
			lit.WriteByte('{')
			i += 2

		case c == '}' && i+1 < len(source) && source[i+1] == '}':
			lit.WriteByte('}')
			i += 2

		case c == '}':
			return nil, &SyntaxError{Offset: i, Msg: "unmatched '}'"}

		case c == '{':
			end := strings.IndexAny(source[i+1:], "{}")
			if end < 0 || source[i+1+end] == '{' {
				return nil, &SyntaxError{Offset: i, Msg: "unclosed placeholder"}
			}
			content := source[i+1 : i+1+end]
			seg, err := classify(content, i)
			if err != nil {
				return nil, err
			}
			flush()
			t.segments = append(t.segments, seg)
			i += end + 2

		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()

	return t, nil
}

// MustCompile is like Compile but panics on error. Use it for templates
// fixed at build time.
func MustCompile(source string) *Template {
	t, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return t
}

func classify(content string, offset int) (segment, error) {
	if content == "" {
		return segment{}, &SyntaxError{Offset: offset, Msg: "empty placeholder"}
	}

	if len(content) >= 4 && strings.HasPrefix(content, "//") && strings.HasSuffix(content, "//") {
		return segment{kind: segMarker, text: content}, nil
	}

	path := strings.Split(content, ".")
	for _, p := range path {
		if p == "" || strings.ContainsAny(p, " \t\r\n") {
			return segment{}, &SyntaxError{Offset: offset, Msg: "invalid field path " + strconv.Quote(content)}
		}
	}
	return segment{kind: segField, text: content, path: path}, nil
}

// Source returns the template text as given to Compile.
func (t *Template) Source() string {
	return t.source
}

// Markers returns the marker tokens referenced by the template, in order of
// first appearance.
func (t *Template) Markers() []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range t.segments {
		if s.kind == segMarker && !seen[s.text] {
			seen[s.text] = true
			out = append(out, s.text)
		}
	}
	return out
}

// Fields returns the field paths referenced by the template, in order of
// first appearance.
func (t *Template) Fields() []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range t.segments {
		if s.kind == segField && !seen[s.text] {
			seen[s.text] = true
			out = append(out, s.text)
		}
	}
	return out
}

// Render substitutes every placeholder. Field paths must start with root and
// are resolved against input; markers are resolved through markers, which may
// be nil when the template has none.
func (t *Template) Render(root string, input Record, markers Resolver) (string, error) {
	var b strings.Builder
	b.Grow(len(t.source))

	for _, s := range t.segments {
		switch s.kind {
		case segLiteral:
			b.WriteString(s.text)

		case segMarker:
			if markers == nil {
				return "", &UnknownMarkerError{Token: s.text}
			}
			text, ok := markers.Resolve(s.text)
			if !ok {
				return "", &UnknownMarkerError{Token: s.text}
			}
			b.WriteString(text)

		case segField:
			v, err := resolve(s, root, input)
			if err != nil {
				return "", err
			}
			b.WriteString(Stringify(v))
		}
	}

	return b.String(), nil
}

// Render compiles source and renders it in one step.
func Render(source, root string, input Record, markers Resolver) (string, error) {
	t, err := Compile(source)
	if err != nil {
		return "", err
	}
	return t.Render(root, input, markers)
}

func resolve(s segment, root string, input Record) (any, error) {
	if s.path[0] != root {
		return nil, &MissingFieldError{Path: s.text, Segment: s.path[0], Reason: "unknown binding"}
	}

	var cur any = input
	for _, name := range s.path[1:] {
		rec, ok := asRecord(cur)
		if !ok {
			return nil, &MissingFieldError{Path: s.text, Segment: name, Reason: "parent is not a record, at"}
		}
		v, ok := rec.Field(name)
		if !ok {
			return nil, &MissingFieldError{Path: s.text, Segment: name, Reason: "no field"}
		}
		cur = v
	}

	if cur == nil && len(s.path) == 1 && input == nil {
		return nil, &MissingFieldError{Path: s.text, Segment: root, Reason: "no input bound to"}
	}
	return cur, nil
}
