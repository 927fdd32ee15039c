package utils

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxStringLength is the cut-off used by TruncateStringDefault.
const DefaultMaxStringLength = 500

// JSONToString encodes object as JSON, indented with two spaces when indent
// is true. Encoding failures come back as a JSON error object so the result
// is always printable.
func JSONToString(object any, indent ...bool) string {
	var encoded []byte
	var err error
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		msg, _ := json.Marshal("failed to marshal to JSON: " + err.Error())
		return `{"error": ` + string(msg) + `}`
	}
	return string(encoded)
}

// TruncateString cuts s to at most maxLen bytes, backing off to a rune
// boundary, and notes the original length. A non-positive maxLen means
// DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:cut], len(s))
}

// TruncateStringDefault truncates s to DefaultMaxStringLength.
func TruncateStringDefault(s string) string {
	return TruncateString(s, DefaultMaxStringLength)
}
