package template

import "fmt"

// MissingFieldError is returned when a field placeholder cannot be resolved
// against the input: the root name is wrong, a segment is absent, or an
// intermediate value is not a record.
type MissingFieldError struct {
	Path    string // full placeholder path, e.g. "arg.a.c"
	Segment string // the segment that failed
	Reason  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("template: cannot resolve {%s}: %s %q", e.Path, e.Reason, e.Segment)
}

// UnknownMarkerError is returned when a marker placeholder has no entry in
// the marker table.
type UnknownMarkerError struct {
	Token string
}

func (e *UnknownMarkerError) Error() string {
	return fmt.Sprintf("template: unknown marker %q", e.Token)
}

// SyntaxError reports a malformed template.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template: %s at offset %d", e.Msg, e.Offset)
}
