package interpret

import (
	"encoding/json"
	"strings"
)

// cut is a prefix end where the text so far forms complete JSON values,
// with the openers still active there.
type cut struct {
	end    int
	opened []byte
}

// extractJSON returns the first balanced {...} span in s. Braces inside string
// literals are ignored. A truncated or mis-closed object is repaired by cutting
// after the last complete member and closing whatever is still open.
func extractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	var (
		stack    []byte
		inString bool
		escaped  bool
		cuts     []cut
	)
	mark := func(end int) {
		cuts = append(cuts, cut{end: end, opened: append([]byte(nil), stack...)})
	}

scan:
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				mark(i + 1)
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if !matches(stack[len(stack)-1], c) {
				break scan
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], true
			}
			mark(i + 1)
		case ',':
			mark(i)
		case ':', ' ', '\t', '\r', '\n':
		default:
			// end of a bare scalar; one running into the end of input may be truncated
			if i+1 < len(s) && strings.IndexByte(" \t\r\n,}]", s[i+1]) >= 0 {
				mark(i + 1)
			}
		}
	}

	for i := len(cuts) - 1; i >= 0; i-- {
		repaired := strings.TrimRight(s[start:cuts[i].end], " \t\r\n") + closers(cuts[i].opened)
		if json.Valid([]byte(repaired)) {
			return repaired, true
		}
	}
	return "", false
}

func matches(opener, closer byte) bool {
	return (opener == '{' && closer == '}') || (opener == '[' && closer == ']')
}

func closers(opened []byte) string {
	var b strings.Builder
	for i := len(opened) - 1; i >= 0; i-- {
		if opened[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
