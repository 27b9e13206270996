// Package analysis scores structural complexity and semantic boundaries.
package analysis

import (
	"strings"

	"github.com/kkkqkx123/code-search-helper/internal/grammar"
)

// decisionNodeTypes are syntax node types that add a complexity point.
var decisionNodeTypes = map[string]bool{
	"if_statement":           true,
	"if_expression":          true,
	"for_statement":          true,
	"for_expression":         true,
	"while_statement":        true,
	"do_statement":           true,
	"switch_statement":       true,
	"switch_expression":      true,
	"match_expression":       true,
	"case_clause":            true,
	"catch_clause":           true,
	"except_clause":          true,
	"conditional_expression": true,
	"ternary_expression":     true,
}

// nestingWeight is the per-level depth penalty added for decision nodes
// below the top level.
const nestingWeight = 1

// ScoreNode computes a complexity score for a subtree with an explicit
// breadth-first queue. Each decision node adds one point plus its relative
// nesting depth; the walk honors the global depth cap.
func ScoreNode(root *grammar.Node) int {
	if root == nil {
		return 0
	}

	score := 1 // baseline: a straight-line body still costs one
	queue := []*grammar.Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == nil || n.Depth > grammar.MaxTraversalDepth {
			continue
		}

		if decisionNodeTypes[n.Type] {
			score++
			if rel := n.Depth - root.Depth; rel > 1 {
				score += (rel - 1) * nestingWeight
			}
		}

		queue = append(queue, n.Children...)
	}

	return score
}

// NestingDepth returns the maximum node depth below root, iteratively.
func NestingDepth(root *grammar.Node) int {
	if root == nil {
		return 0
	}

	max := 0
	queue := []*grammar.Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == nil || n.Depth > grammar.MaxTraversalDepth {
			continue
		}
		if rel := n.Depth - root.Depth; rel > max {
			max = rel
		}
		queue = append(queue, n.Children...)
	}

	return max
}

// branchKeywords are lexical cues used when no syntax tree is available.
var branchKeywords = []string{
	"if ", "if(", "else", "for ", "for(", "while ", "while(",
	"switch", "case ", "match ", "catch", "except", "elif ",
}

// ScoreText estimates complexity from lexical cues alone, for candidates
// produced by the universal tiers.
func ScoreText(content string) int {
	score := 1
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, kw := range branchKeywords {
			if strings.HasPrefix(trimmed, kw) {
				score++
				break
			}
		}
	}
	return score
}
