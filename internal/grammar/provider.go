// Package grammar supplies per-language parsing and structural extraction.
// The engine depends only on the Provider interface; the tree-sitter
// implementation is compiled in under cgo and replaced by a no-support stub
// otherwise.
package grammar

import "context"

// MaxTraversalDepth bounds all iterative tree walks. Nodes deeper than this
// are discarded during conversion.
const MaxTraversalDepth = 15

// Node is an owned syntax node converted out of the underlying parser. It
// carries no references to parser-owned memory.
type Node struct {
	Type      string
	Name      string // symbol name when the grammar exposes one
	StartByte int
	EndByte   int
	StartLine int // 1-based
	EndLine   int // 1-based
	Depth     int
	Children  []*Node
}

// Tree is an owned parse result. It is exclusively owned by the strategy
// attempt that requested it and is not shared across goroutines.
type Tree struct {
	Root     *Node
	Source   []byte
	Language string
}

// Provider parses source content for a fixed set of languages.
type Provider interface {
	// Parse returns an owned syntax tree, or an error normalized by the
	// caller into a parse failure.
	Parse(ctx context.Context, content []byte, language string) (*Tree, error)

	// Supports reports whether a grammar is registered for language.
	Supports(language string) bool
}

// Span returns the node's source text.
func (n *Node) Span(source []byte) string {
	if n.StartByte < 0 || n.EndByte > len(source) || n.StartByte >= n.EndByte {
		return ""
	}
	return string(source[n.StartByte:n.EndByte])
}
