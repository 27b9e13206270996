// Package postprocess turns raw tier candidates into the final chunk list:
// validation filtering, trailing rebalance, dedup/merge, and bounded
// overlap injection, in that fixed order.
package postprocess

import (
	"sort"
	"strings"

	"github.com/kkkqkx123/code-search-helper/internal/analysis"
	"github.com/kkkqkx123/code-search-helper/internal/chunk"
	"github.com/kkkqkx123/code-search-helper/internal/pkg/hash"
	"github.com/kkkqkx123/code-search-helper/internal/pkg/logger"
	"github.com/kkkqkx123/code-search-helper/internal/strategy"
	"github.com/kkkqkx123/code-search-helper/internal/textsplit"
)

// similarityThreshold is the token-overlap ratio above which two range-
// adjacent candidates are merged as near-duplicates.
const similarityThreshold = 0.8

// Process runs the post-processing pipeline over one tier outcome and
// emits the final ordered chunks.
func Process(unit chunk.SourceUnit, lang string, tier strategy.Tier, cands []chunk.Candidate, opts chunk.Options, log *logger.Logger) []chunk.Chunk {
	if log == nil {
		log = logger.Nop()
	}
	source := string(unit.Content)

	kept := filter(cands, tier, opts)
	if len(kept) == 0 && len(cands) > 0 {
		// Everything was undersized; re-filter without the size rule so a
		// file of tiny fragments still produces output.
		kept = filterUnsized(cands, tier)
	}

	kept = rebalanceTrailing(kept, opts)
	kept = dedupMerge(source, kept, log)
	kept = applyOverlap(source, kept, opts)

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].StartLine < kept[j].StartLine })

	degraded := tier.Degraded()
	out := make([]chunk.Chunk, 0, len(kept))
	for i, c := range kept {
		out = append(out, chunk.NewChunk(unit.Path, lang, c, i, degraded))
	}
	return out
}

// filter drops invalid candidates: whitespace-only, bare delimiters,
// symbol-unbalanced content where the tier promises balance, and
// undersized fragments unless the file has only one candidate.
func filter(cands []chunk.Candidate, tier strategy.Tier, opts chunk.Options) []chunk.Candidate {
	checkSize := len(cands) > 1
	var out []chunk.Candidate
	for _, c := range cands {
		if !basicValid(c, tier) {
			continue
		}
		if checkSize && len(c.Content) < opts.MinChunkSize {
			continue
		}
		out = append(out, c)
	}
	return out
}

func filterUnsized(cands []chunk.Candidate, tier strategy.Tier) []chunk.Candidate {
	var out []chunk.Candidate
	for _, c := range cands {
		if basicValid(c, tier) {
			out = append(out, c)
		}
	}
	return out
}

func basicValid(c chunk.Candidate, tier strategy.Tier) bool {
	if strings.TrimSpace(c.Content) == "" || chunk.IsBareDelimiter(c.Content) {
		return false
	}
	if enforceBalance(tier) && !textsplit.Balanced(c.Content) {
		return false
	}
	return true
}

// enforceBalance reports whether the producing tier promises symbol-
// balanced candidates. The bracket tier enforces balance itself and the
// line tier cuts at designed boundaries, so neither is re-checked.
func enforceBalance(tier strategy.Tier) bool {
	switch tier {
	case strategy.TierBracket, strategy.TierLine:
		return false
	}
	return true
}

// rebalanceTrailing merges a disproportionately small final candidate
// backward into its neighbor instead of emitting a tiny trailing fragment.
// The threshold is relative: a quarter of the neighbor's size, but at
// least the configured minimum.
func rebalanceTrailing(cands []chunk.Candidate, opts chunk.Options) []chunk.Candidate {
	n := len(cands)
	if n < 2 {
		return cands
	}
	last := cands[n-1]
	prev := cands[n-2]

	threshold := len(prev.Content) / 4
	if threshold < opts.MinChunkSize {
		threshold = opts.MinChunkSize
	}
	if len(last.Content) >= threshold {
		return cands
	}
	merged := prev
	merged.Content = prev.Content + "\n" + last.Content
	merged.EndLine = last.EndLine
	if last.EndByte > merged.EndByte {
		merged.EndByte = last.EndByte
	}
	if last.Complexity > merged.Complexity {
		merged.Complexity = last.Complexity
	}
	return append(cands[:n-2], merged)
}

// dedupMerge collapses duplicate and near-duplicate candidates whose line
// ranges touch, preferring the union of their ranges.
func dedupMerge(source string, cands []chunk.Candidate, log *logger.Logger) []chunk.Candidate {
	if len(cands) < 2 {
		return cands
	}

	out := []chunk.Candidate{cands[0]}
	for _, c := range cands[1:] {
		prev := &out[len(out)-1]

		rangesTouch := c.StartLine <= prev.EndLine+1
		sameHash := hash.ChunkContent(c.Content) == hash.ChunkContent(prev.Content)
		if rangesTouch && (sameHash || tokenOverlap(prev.Content, c.Content) >= similarityThreshold) {
			*prev = mergeUnion(source, *prev, c)
			log.Debug("merged near-duplicate candidates",
				"start", prev.StartLine, "end", prev.EndLine)
			continue
		}
		out = append(out, c)
	}
	return out
}

// mergeUnion combines two overlapping candidates into one spanning the
// union of their ranges, re-sliced from the source so no bytes double up.
func mergeUnion(source string, a, b chunk.Candidate) chunk.Candidate {
	start, end := a.StartLine, a.EndLine
	if b.StartLine < start {
		start = b.StartLine
	}
	if b.EndLine > end {
		end = b.EndLine
	}

	merged := textsplit.Slice(source, start, end)
	if merged.Content == "" {
		// Source slicing unavailable (byte offsets from a different
		// normalization); keep the wider of the two.
		if len(b.Content) > len(a.Content) {
			merged = b
		} else {
			merged = a
		}
		merged.StartLine, merged.EndLine = start, end
	}

	merged.Kind = a.Kind
	if merged.Kind == chunk.KindGeneric && b.Kind != chunk.KindGeneric {
		merged.Kind = b.Kind
	}
	merged.Name = a.Name
	if merged.Name == "" {
		merged.Name = b.Name
	}
	if c := analysis.ScoreText(merged.Content); c > merged.Complexity {
		merged.Complexity = c
	}
	return merged
}
