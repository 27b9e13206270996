package strategy

import (
	"context"
	"sort"
	"strings"

	"github.com/kkkqkx123/code-search-helper/internal/analysis"
	"github.com/kkkqkx123/code-search-helper/internal/chunk"
	"github.com/kkkqkx123/code-search-helper/internal/grammar"
	apperrors "github.com/kkkqkx123/code-search-helper/internal/pkg/errors"
	"github.com/kkkqkx123/code-search-helper/internal/textsplit"
)

// runAST parses the unit and turns structural nodes into candidates.
// Structural nodes nest (a class contains its methods, the root spans the
// whole file), so acceptance runs in ExtractKinds order and any node whose
// byte range overlaps an accepted candidate is suppressed; the finest level
// wins and chunk ranges stay pairwise disjoint. Lines between structural
// nodes are wrapped as statement candidates so the tier still covers the
// whole file.
func (m *Manager) runAST(ctx context.Context, unit chunk.SourceUnit, lang string) ([]chunk.Candidate, error) {
	if m.provider == nil {
		return nil, apperrors.ParseFailure("no grammar provider", nil)
	}

	key := grammar.TreeKey(lang, unit.Content)
	tree, ok := m.caches.GetTree(key)
	if !ok {
		var err error
		tree, err = m.provider.Parse(ctx, unit.Content, lang)
		if err != nil {
			return nil, apperrors.ParseFailure("parse failed", err).WithDetail("language", lang)
		}
		m.caches.PutTree(key, tree)
	}

	var cands []chunk.Candidate
	var accepted [][2]int
	for _, kind := range grammar.ExtractKinds {
		nodes, ok := m.caches.GetExtract(key, kind)
		if !ok {
			nodes = grammar.Extract(tree, kind)
			m.caches.PutExtract(key, kind, nodes)
		}
		for _, n := range nodes {
			span := [2]int{n.StartByte, n.EndByte}
			if overlapsAccepted(accepted, span) {
				continue
			}
			accepted = append(accepted, span)
			cands = append(cands, candidateFromNode(n, tree.Source))
		}
	}

	if len(cands) == 0 {
		return nil, nil
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].StartLine != cands[j].StartLine {
			return cands[i].StartLine < cands[j].StartLine
		}
		return cands[i].EndLine > cands[j].EndLine
	})

	return fillGaps(string(unit.Content), cands), nil
}

// overlapsAccepted reports whether span shares any bytes with an accepted
// span. AST node ranges either nest or are disjoint, so this suppresses both
// a container of an accepted node and a node inside an accepted container.
func overlapsAccepted(spans [][2]int, span [2]int) bool {
	for _, s := range spans {
		if span[0] < s[1] && s[0] < span[1] {
			return true
		}
	}
	return false
}

func candidateFromNode(n *grammar.Node, source []byte) chunk.Candidate {
	start, end := n.StartByte, n.EndByte
	if start < 0 {
		start = 0
	}
	if end > len(source) {
		end = len(source)
	}
	return chunk.Candidate{
		Content:    string(source[start:end]),
		StartLine:  n.StartLine,
		EndLine:    n.EndLine,
		StartByte:  start,
		EndByte:    end,
		Kind:       grammar.KindForNodeType(n.Type),
		Name:       n.Name,
		Complexity: analysis.ScoreNode(n),
	}
}

// fillGaps inserts statement candidates for line ranges no structural node
// covers. Blank and delimiter-only gaps are dropped. cands must be sorted
// by start line.
func fillGaps(content string, cands []chunk.Candidate) []chunk.Candidate {
	total := textsplit.TotalLines(content)
	out := make([]chunk.Candidate, 0, len(cands)+2)

	covered := 0
	for _, c := range cands {
		if c.StartLine > covered+1 {
			if g, ok := gapCandidate(content, covered+1, c.StartLine-1); ok {
				out = append(out, g)
			}
		}
		out = append(out, c)
		if c.EndLine > covered {
			covered = c.EndLine
		}
	}
	if covered < total {
		if g, ok := gapCandidate(content, covered+1, total); ok {
			out = append(out, g)
		}
	}

	return out
}

func gapCandidate(content string, start, end int) (chunk.Candidate, bool) {
	c := textsplit.Slice(content, start, end)
	if strings.TrimSpace(c.Content) == "" || chunk.IsBareDelimiter(c.Content) {
		return chunk.Candidate{}, false
	}
	c.Kind = chunk.KindStatement
	return c, true
}
