package parse

import (
	"strings"
)

const fence = "```"

// extractCandidates returns the substrings of text that may hold the JSON
// payload, in the order they should be tried:
//
//  1. the whole (trimmed) text
//  2. the body of each markdown code fence
//  3. each top-level balanced {...} or [...] span, by start offset; a span
//     that runs off the end of the text is kept as-is for repair
//
// Spans nested inside an earlier balanced span are not listed separately.
func extractCandidates(text string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	add(text)
	for _, body := range fencedBlocks(text) {
		add(body)
	}
	for _, span := range balancedSpans(text) {
		add(span)
	}
	return out
}

// fencedBlocks returns the bodies of ``` blocks, dropping the info string
// (e.g. "json") on the opening line. An unterminated block runs to the end.
func fencedBlocks(text string) []string {
	var out []string
	rest := text
	for {
		open := strings.Index(rest, fence)
		if open < 0 {
			return out
		}
		rest = rest[open+len(fence):]

		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
			rest = rest[nl+1:]
		}

		end := strings.Index(rest, fence)
		if end < 0 {
			return append(out, rest)
		}
		out = append(out, rest[:end])
		rest = rest[end+len(fence):]
	}
}

// balancedSpans scans text left to right for '{' or '[' and returns the span
// up to its matching closer, honouring JSON string literals and escapes.
func balancedSpans(text string) []string {
	var out []string
	for i := 0; i < len(text); {
		start := strings.IndexAny(text[i:], "{[")
		if start < 0 {
			break
		}
		start += i

		end, status := matchSpan(text, start)
		switch status {
		case spanBalanced:
			out = append(out, text[start:end])
			i = end
		case spanUnterminated:
			out = append(out, text[start:])
			i = start + 1
		default:
			i = start + 1
		}
	}
	return out
}

type spanStatus int

const (
	spanMismatched spanStatus = iota
	spanBalanced
	spanUnterminated
)

func matchSpan(text string, start int) (int, spanStatus) {
	var closers []byte
	inString, escaped := false, false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			closers = append(closers, '}')
		case '[':
			closers = append(closers, ']')
		case '}', ']':
			if len(closers) == 0 || closers[len(closers)-1] != c {
				return i, spanMismatched
			}
			closers = closers[:len(closers)-1]
			if len(closers) == 0 {
				return i + 1, spanBalanced
			}
		}
	}
	return len(text), spanUnterminated
}
