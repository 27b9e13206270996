package postprocess

import (
	"strings"

	"github.com/kkkqkx123/code-search-helper/internal/analysis"
	"github.com/kkkqkx123/code-search-helper/internal/chunk"
)

// applyOverlap splits candidates that exceed the size ceiling, giving each
// sub-part a bounded leading overlap, and injects neighbor overlap across
// all candidates when the source is unstructured text. Well-bounded
// structural chunks are never padded.
func applyOverlap(source string, cands []chunk.Candidate, opts chunk.Options) []chunk.Candidate {
	limit := opts.MaxOverlap()

	var out []chunk.Candidate
	var prefixed []bool // split parts already carry an overlap prefix
	for _, c := range cands {
		if len(c.Content) > opts.MaxChunkSize {
			parts := splitOversize(c, opts, limit)
			for i, p := range parts {
				out = append(out, p)
				prefixed = append(prefixed, i > 0)
			}
			continue
		}
		out = append(out, c)
		prefixed = append(prefixed, false)
	}

	if limit > 0 && !analysis.HasStructure(source) {
		out = injectNeighborOverlap(out, prefixed, limit)
	}
	return out
}

// splitOversize cuts one oversize candidate at line boundaries into parts
// under the size ceiling. Every part after the first carries the trailing
// lines of its predecessor as overlap, capped at limit characters; the
// line ranges stay disjoint so overlapped bytes are attributable.
func splitOversize(c chunk.Candidate, opts chunk.Options, limit int) []chunk.Candidate {
	lines := strings.Split(c.Content, "\n")
	if len(lines) < 2 {
		return []chunk.Candidate{c}
	}

	type part struct{ first, last int } // 0-based line offsets within c
	var parts []part
	cur := part{first: 0, last: 0}
	size := len(lines[0])
	for i := 1; i < len(lines); i++ {
		if size+1+len(lines[i]) > opts.MaxChunkSize {
			parts = append(parts, cur)
			cur = part{first: i, last: i}
			size = len(lines[i])
			continue
		}
		cur.last = i
		size += 1 + len(lines[i])
	}
	parts = append(parts, cur)

	if len(parts) == 1 {
		return []chunk.Candidate{c}
	}

	byteOff := c.StartByte
	out := make([]chunk.Candidate, 0, len(parts))
	for pi, p := range parts {
		body := strings.Join(lines[p.first:p.last+1], "\n")
		content := body
		if pi > 0 {
			prevBody := strings.Join(lines[parts[pi-1].first:parts[pi-1].last+1], "\n")
			if tail := trailingLines(prevBody, limit); tail != "" {
				content = tail + "\n" + body
			}
		}

		out = append(out, chunk.Candidate{
			Content:    content,
			StartLine:  c.StartLine + p.first,
			EndLine:    c.StartLine + p.last,
			StartByte:  byteOff,
			EndByte:    byteOff + len(body),
			Kind:       c.Kind,
			Name:       c.Name,
			Complexity: analysis.ScoreText(content),
		})
		byteOff += len(body) + 1
	}
	// Only the first part keeps the symbol name; the rest are continuations.
	for i := 1; i < len(out); i++ {
		out[i].Name = ""
	}
	return out
}

// injectNeighborOverlap prefixes each candidate with the tail of its
// predecessor, capped at limit characters and aligned to whole lines.
// Candidates flagged in prefixed already carry an overlap and are skipped.
func injectNeighborOverlap(cands []chunk.Candidate, prefixed []bool, limit int) []chunk.Candidate {
	if len(cands) < 2 {
		return cands
	}

	// Tails come from the contents as produced, before any prefixing here.
	tails := make([]string, len(cands))
	for i := 0; i < len(cands)-1; i++ {
		tails[i+1] = trailingLines(cands[i].Content, limit)
	}

	out := make([]chunk.Candidate, len(cands))
	copy(out, cands)
	for i := 1; i < len(out); i++ {
		if tails[i] == "" || prefixed[i] {
			continue
		}
		out[i].Content = tails[i] + "\n" + out[i].Content
	}
	return out
}

// trailingLines returns the longest whole-line suffix of s at most limit
// characters long.
func trailingLines(s string, limit int) string {
	lines := strings.Split(s, "\n")
	size := 0
	start := len(lines)
	for i := len(lines) - 1; i >= 0; i-- {
		add := len(lines[i])
		if start < len(lines) {
			add++
		}
		if size+add > limit {
			break
		}
		size += add
		start = i
	}
	if start == len(lines) {
		return ""
	}
	return strings.Join(lines[start:], "\n")
}
