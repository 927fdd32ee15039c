// Package marker holds the static text blocks that a prompt template pulls in
// through reserved marker placeholders, such as the listing of an enum's
// values or a sketch of the JSON shape the model must answer with.
//
// A [Table] is built once (usually by [FromSchema]) and only read afterwards,
// so it is safe to share across concurrent renders.
package marker

import (
	"fmt"
	"sort"
)

const (
	tokenPrefix = "//BAML_CLIENT_REPLACE_ME_MAGIC_"
	tokenSuffix = "//"

	// OutputName is the marker name under which FromSchema stores the output sketch.
	OutputName = "output"
)

// Token returns the reserved marker token for name. Templates reference it
// inside braces, e.g. "{//BAML_CLIENT_REPLACE_ME_MAGIC_output//}".
func Token(name string) string {
	return tokenPrefix + name + tokenSuffix
}

// Placeholder returns the token wrapped in braces, ready to paste into a template.
func Placeholder(name string) string {
	return "{" + Token(name) + "}"
}

// Entry maps one marker token to its replacement text.
type Entry struct {
	Token string
	Text  string
}

// DuplicateMarkerError is returned by New when two entries share a token.
type DuplicateMarkerError struct {
	Token string
}

func (e *DuplicateMarkerError) Error() string {
	return fmt.Sprintf("marker %q is defined more than once", e.Token)
}

// Table is an immutable token -> text mapping.
type Table struct {
	entries map[string]string
}

// New builds a table from the given entries.
func New(entries ...Entry) (*Table, error) {
	t := &Table{entries: make(map[string]string, len(entries))}
	for _, e := range entries {
		if _, dup := t.entries[e.Token]; dup {
			return nil, &DuplicateMarkerError{Token: e.Token}
		}
		t.entries[e.Token] = e.Text
	}
	return t, nil
}

// Resolve returns the replacement text for token. The lookup is exact.
func (t *Table) Resolve(token string) (string, bool) {
	if t == nil {
		return "", false
	}
	text, ok := t.entries[token]
	return text, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Tokens returns all tokens in lexical order.
func (t *Table) Tokens() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
