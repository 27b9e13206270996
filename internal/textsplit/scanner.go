// Package textsplit implements language-agnostic splitting: semantic blocks,
// bracket-balance walking, and raw line windows. It is the engine's fallback
// when AST analysis is unavailable or fails.
package textsplit

// scanState carries string-literal context across lines. Backtick and
// triple-quote literals span lines; single and double quotes reset at end of
// line so an unterminated quote cannot poison the rest of the file.
type scanState struct {
	raw bool // inside a backtick raw literal
}

// openers and closers for symbol balance.
var opener = map[byte]byte{')': '(', ']': '[', '}': '{'}

func isOpen(c byte) bool  { return c == '(' || c == '[' || c == '{' }
func isClose(c byte) bool { return c == ')' || c == ']' || c == '}' }

// depthDelta returns the signed bracket depth change of line, ignoring
// delimiters inside string literals and line comments. st persists raw
// literal state across lines.
func depthDelta(line string, st *scanState) int {
	delta := 0
	var quote byte
	escaped := false

	for i := 0; i < len(line); i++ {
		c := line[i]

		if st.raw {
			if c == '`' {
				st.raw = false
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}

		if quote != 0 {
			switch c {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
			continue
		}

		switch {
		case c == '`':
			st.raw = true
		case c == '"' || c == '\'':
			quote = c
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return delta
		case c == '#':
			return delta
		case isOpen(c):
			delta++
		case isClose(c):
			delta--
		}
	}

	return delta
}

// Balanced reports whether content's brackets match, with a stack-based
// matcher that honors string quoting and escapes. Unmatched closers or
// leftover openers both fail.
func Balanced(content string) bool {
	var stack []byte
	var quote byte
	escaped := false
	raw := false
	lineComment := false

	for i := 0; i < len(content); i++ {
		c := content[i]

		if c == '\n' {
			quote = 0
			escaped = false
			lineComment = false
			continue
		}
		if lineComment {
			continue
		}

		if raw {
			if c == '`' {
				raw = false
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}

		if quote != 0 {
			switch c {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
			continue
		}

		switch {
		case c == '`':
			raw = true
		case c == '"' || c == '\'':
			quote = c
		case c == '/' && i+1 < len(content) && content[i+1] == '/':
			lineComment = true
		case c == '#':
			lineComment = true
		case isOpen(c):
			stack = append(stack, c)
		case isClose(c):
			if len(stack) == 0 || stack[len(stack)-1] != opener[c] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}

	return len(stack) == 0
}
