package utils

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONToString(t *testing.T) {
	input := map[string]int{"a": 1, "b": 2}

	if got := JSONToString(input); got != `{"a":1,"b":2}` {
		t.Errorf("JSONToString() = %q", got)
	}

	indented := JSONToString(map[string]int{"x": 42}, true)
	if indented != "{\n  \"x\": 42\n}" {
		t.Errorf("JSONToString(indent) = %q", indented)
	}
}

func TestJSONToString_MarshalError(t *testing.T) {
	got := JSONToString(make(chan int))

	var decoded map[string]string
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("error output should be valid JSON, got %q: %v", got, err)
	}
	if !strings.HasPrefix(decoded["error"], "failed to marshal to JSON") {
		t.Errorf("unexpected error payload %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short", input: "hello", maxLen: 10, want: "hello"},
		{name: "exact", input: "hello", maxLen: 5, want: "hello"},
		{name: "cut", input: "hello world", maxLen: 5, want: "hello... (truncated, total: 11 chars)"},
		{name: "rune boundary", input: "héllo", maxLen: 2, want: "h... (truncated, total: 6 chars)"},
		{name: "default length", input: "abc", maxLen: 0, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString() = %q, want %q", got, tt.want)
			}
		})
	}

	long := strings.Repeat("x", DefaultMaxStringLength+1)
	if got := TruncateStringDefault(long); !strings.HasSuffix(got, "(truncated, total: 501 chars)") {
		t.Errorf("TruncateStringDefault() = %q", got[len(got)-40:])
	}
}
