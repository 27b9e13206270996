package analysis

import "strings"

// blockKeywords open a new semantic block when they start a line.
var blockKeywords = []string{
	"def ", "class ", "func ", "fn ", "function ", "interface ",
	"struct ", "impl ", "type ", "module ", "package ", "import ",
	"from ", "use ", "pub fn ", "async def ", "export ", "const ",
	"public ", "private ", "protected ", "#",
}

// BoundaryScore rates how strong a semantic boundary sits between prev and
// curr. Blank-line runs, outdents and block keywords each add weight; higher
// scores mark better split points. Zero means no boundary evidence.
func BoundaryScore(prev, curr string, blankRun int) int {
	score := 0

	if blankRun > 0 {
		score += 2
		if blankRun > 1 {
			score++
		}
	}

	trimmed := strings.TrimSpace(curr)
	if trimmed == "" {
		return score
	}

	prevIndent := indentWidth(prev)
	currIndent := indentWidth(curr)
	if currIndent < prevIndent {
		score++
	}
	if currIndent == 0 && prevIndent > 0 {
		score++
	}

	for _, kw := range blockKeywords {
		if strings.HasPrefix(trimmed, kw) {
			score += 2
			break
		}
	}

	return score
}

// StrongBoundary reports whether a score marks a reliable split point.
func StrongBoundary(score int) bool {
	return score >= 3
}

// HasStructure reports whether content shows any semantic boundaries at all.
// Unstructured text (prose, logs) gets overlap injection downstream.
func HasStructure(content string) bool {
	lines := strings.Split(content, "\n")
	prev := ""
	blankRun := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankRun++
			continue
		}
		if StrongBoundary(BoundaryScore(prev, line, blankRun)) {
			return true
		}
		prev = line
		blankRun = 0
	}
	return false
}

func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}
