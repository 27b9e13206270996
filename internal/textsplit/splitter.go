package textsplit

import (
	"strings"

	"github.com/kkkqkx123/code-search-helper/internal/analysis"
	"github.com/kkkqkx123/code-search-helper/internal/chunk"
)

// Config bounds the universal splitters.
type Config struct {
	MaxChunkSize int // characters
	MinChunkSize int // characters
	MinLines     int // minimum lines before a balanced boundary is honored
	MaxLines     int // hard per-chunk line ceiling
}

// ConfigFromOptions derives a splitter config from engine options.
func ConfigFromOptions(o chunk.Options) Config {
	return Config{
		MaxChunkSize: o.MaxChunkSize,
		MinChunkSize: o.MinChunkSize,
		MinLines:     o.MinLinesPerChunk,
		MaxLines:     o.MaxLinesPerChunk,
	}
}

// lineIndex precomputes byte offsets for candidate construction.
type lineIndex struct {
	lines   []string
	offsets []int
}

func indexLines(content string) lineIndex {
	lines := strings.Split(content, "\n")
	// A trailing newline produces an empty last element; drop it so line
	// numbers match the file.
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	offsets := make([]int, len(lines))
	off := 0
	for i, line := range lines {
		offsets[i] = off
		off += len(line) + 1
	}
	return lineIndex{lines: lines, offsets: offsets}
}

// emit builds a candidate spanning lines start..end inclusive (0-based).
func (ix lineIndex) emit(start, end int) chunk.Candidate {
	content := strings.Join(ix.lines[start:end+1], "\n")
	return chunk.Candidate{
		Content:    content,
		StartLine:  start + 1,
		EndLine:    end + 1,
		StartByte:  ix.offsets[start],
		EndByte:    ix.offsets[end] + len(ix.lines[end]),
		Kind:       chunk.KindGeneric,
		Complexity: analysis.ScoreText(content),
	}
}

func (ix lineIndex) segmentSize(start, end int) int {
	return ix.offsets[end] + len(ix.lines[end]) - ix.offsets[start]
}

// blockStarts returns the 0-based line indexes where a new blank-delimited
// block begins. Line 0 always starts a block.
func blockStarts(ix lineIndex) []int {
	var starts []int
	inBlank := true
	for i, line := range ix.lines {
		blank := strings.TrimSpace(line) == ""
		if !blank && inBlank {
			if len(starts) == 0 {
				starts = append(starts, 0)
			} else {
				starts = append(starts, i)
			}
		}
		inBlank = blank
	}
	if len(starts) == 0 && len(ix.lines) > 0 {
		starts = []int{0}
	}
	return starts
}

// mergeSegments walks split points and merges segments forward until each
// one is at least MinChunkSize characters and symbol-balanced, forcing a cut
// once the segment reaches the hard line ceiling.
func mergeSegments(ix lineIndex, splitPoints []int, cfg Config) []chunk.Candidate {
	if len(ix.lines) == 0 {
		return nil
	}

	// Segment ends: each split point closes the previous segment.
	var out []chunk.Candidate
	segStart := 0
	for i := 1; i <= len(splitPoints); i++ {
		var end int
		if i == len(splitPoints) {
			end = len(ix.lines) - 1
		} else {
			end = splitPoints[i] - 1
		}
		if end < segStart {
			continue
		}

		size := ix.segmentSize(segStart, end)
		lines := end - segStart + 1
		last := i == len(splitPoints)

		if !last && size < cfg.MinChunkSize {
			continue // too small, merge into the next segment
		}

		cand := ix.emit(segStart, end)
		if !last && lines < cfg.MaxLines && !Balanced(cand.Content) {
			continue // unbalanced, extend forward
		}

		out = append(out, cand)
		segStart = end + 1
	}

	return out
}

// SemanticFine splits at every blank-line-delimited block, merged only as
// far as size and symbol balance demand.
func SemanticFine(content string, cfg Config) []chunk.Candidate {
	if content == "" {
		return nil
	}
	ix := indexLines(content)
	out := mergeSegments(ix, blockStarts(ix), cfg)
	if len(out) < 2 && len(ix.lines) > cfg.MaxLines {
		// One giant segment for a large file means there were no usable
		// block boundaries; let a lower tier find real split points.
		return nil
	}
	return out
}

// Semantic splits only at strong semantic boundaries: block starts whose
// boundary score clears the heuristic threshold.
func Semantic(content string, cfg Config) []chunk.Candidate {
	if content == "" {
		return nil
	}
	ix := indexLines(content)

	var points []int
	for _, start := range blockStarts(ix) {
		if start == 0 {
			points = append(points, 0)
			continue
		}

		prev := ""
		blankRun := 0
		for j := start - 1; j >= 0; j-- {
			if strings.TrimSpace(ix.lines[j]) == "" {
				blankRun++
				continue
			}
			prev = ix.lines[j]
			break
		}

		if analysis.StrongBoundary(analysis.BoundaryScore(prev, ix.lines[start], blankRun)) {
			points = append(points, start)
		}
	}

	if len(points) < 2 {
		// No internal boundaries; let the caller fall to the next tier
		// rather than emit one whole-file pseudo-chunk.
		return nil
	}

	out := mergeSegments(ix, points, cfg)
	if len(out) < 2 && len(ix.lines) > cfg.MaxLines {
		return nil
	}
	return out
}

// BracketBalanced walks lines with a signed bracket depth counter, emitting
// a boundary when depth returns to zero with at least MinLines accumulated,
// or forcibly at MaxLines regardless of depth.
func BracketBalanced(content string, cfg Config) []chunk.Candidate {
	if content == "" {
		return nil
	}
	ix := indexLines(content)

	var out []chunk.Candidate
	var st scanState
	depth := 0
	segStart := 0

	for i := range ix.lines {
		depth += depthDelta(ix.lines[i], &st)
		lines := i - segStart + 1

		atBoundary := depth <= 0 && lines >= cfg.MinLines
		forced := lines >= cfg.MaxLines

		if !atBoundary && !forced {
			continue
		}

		cand := ix.emit(segStart, i)
		if atBoundary && !forced && !Balanced(cand.Content) {
			// Mismatched ordering inside the window; extend forward.
			continue
		}

		out = append(out, cand)
		segStart = i + 1
		// A forced cut abandons the open structure; counting resumes from
		// zero so the next segment can close at its own depth-zero point.
		if forced || depth < 0 {
			depth = 0
		}
	}

	if segStart < len(ix.lines) {
		out = append(out, ix.emit(segStart, len(ix.lines)-1))
	}

	return out
}

// LineWindow slices fixed-size line windows with no structural awareness.
// The last-resort tier: always yields at least one candidate for non-empty
// content.
func LineWindow(content string, cfg Config) []chunk.Candidate {
	if content == "" {
		return nil
	}
	ix := indexLines(content)

	window := cfg.MaxLines
	if window < 1 {
		window = 50
	}

	var out []chunk.Candidate
	for start := 0; start < len(ix.lines); start += window {
		end := start + window - 1
		if end >= len(ix.lines) {
			end = len(ix.lines) - 1
		}
		out = append(out, ix.emit(start, end))
	}

	return out
}

// WholeFile wraps the entire content as a single candidate, used for files
// at or below the small-file threshold.
func WholeFile(content string) chunk.Candidate {
	ix := indexLines(content)
	if len(ix.lines) == 0 {
		return chunk.Candidate{}
	}
	return ix.emit(0, len(ix.lines)-1)
}
