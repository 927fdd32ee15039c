package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Stringify formats a resolved placeholder value for insertion into a prompt.
//
// Strings are inserted raw. Records use the canonical form
// "{name: value, ...}" in the record's field order, with nested strings
// single-quoted; lists use "[a, b]". A Record keeps that form even when it
// also implements fmt.Stringer. Numbers use the shortest decimal form,
// booleans are true/false and nil is null.
func Stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	if isNil(v) {
		b.WriteString("null")
		return
	}
	switch x := v.(type) {
	case string:
		writeQuoted(b, x)
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case int:
		b.WriteString(strconv.Itoa(x))
	case int8:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int16:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int32:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint8:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint16:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint32:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		b.WriteString(strconv.FormatUint(x, 10))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case Record:
		writeRecord(b, x)
	case map[string]any:
		writeRecord(b, Map(x))
	case fmt.Stringer:
		b.WriteString(x.String())
	case []any:
		writeList(b, len(x), func(i int) any { return x[i] })
	case []string:
		writeList(b, len(x), func(i int) any { return x[i] })
	case []int:
		writeList(b, len(x), func(i int) any { return x[i] })
	case []int64:
		writeList(b, len(x), func(i int) any { return x[i] })
	case []float64:
		writeList(b, len(x), func(i int) any { return x[i] })
	case []bool:
		writeList(b, len(x), func(i int) any { return x[i] })
	case []Record:
		writeList(b, len(x), func(i int) any { return x[i] })
	default:
		fmt.Fprint(b, x)
	}
}

func writeRecord(b *strings.Builder, r Record) {
	b.WriteByte('{')
	for i, name := range r.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		v, _ := r.Field(name)
		writeValue(b, v)
	}
	b.WriteByte('}')
}

func writeList(b *strings.Builder, n int, at func(int) any) {
	b.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(b, at(i))
	}
	b.WriteByte(']')
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\', '\'':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
}
