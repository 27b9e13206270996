package textsplit

import "github.com/kkkqkx123/code-search-helper/internal/chunk"

// Slice builds a candidate for a 1-based inclusive line range of content.
// Returns a zero candidate when the range is out of bounds.
func Slice(content string, startLine, endLine int) chunk.Candidate {
	ix := indexLines(content)
	if startLine < 1 || endLine < startLine || endLine > len(ix.lines) {
		return chunk.Candidate{}
	}
	return ix.emit(startLine-1, endLine-1)
}

// TotalLines returns the number of lines Slice can address in content.
func TotalLines(content string) int {
	return len(indexLines(content).lines)
}
