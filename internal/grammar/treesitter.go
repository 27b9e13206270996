//go:build cgo

package grammar

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	tsc "github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

type treeSitterProvider struct {
	parsers map[string]*lockedParser
	mu      sync.Mutex
}

// lockedParser serializes access to one underlying parser. tree-sitter
// parsers are not safe for concurrent use, so same-language parses take
// turns; the produced trees are independent of the parser.
type lockedParser struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewProvider returns the tree-sitter backed grammar provider.
func NewProvider() Provider {
	return &treeSitterProvider{
		parsers: make(map[string]*lockedParser),
	}
}

func (p *treeSitterProvider) getParser(language string) *lockedParser {
	p.mu.Lock()
	defer p.mu.Unlock()

	if parser, ok := p.parsers[language]; ok {
		return parser
	}

	var lang *sitter.Language
	switch language {
	case "go":
		lang = golang.GetLanguage()
	case "python":
		lang = python.GetLanguage()
	case "javascript":
		lang = javascript.GetLanguage()
	case "typescript":
		lang = typescript.GetLanguage()
	case "java":
		lang = java.GetLanguage()
	case "rust":
		lang = rust.GetLanguage()
	case "c":
		lang = tsc.GetLanguage()
	case "cpp":
		lang = cpp.GetLanguage()
	case "csharp":
		lang = csharp.GetLanguage()
	default:
		return nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	lp := &lockedParser{parser: parser}
	p.parsers[language] = lp
	return lp
}

func (p *treeSitterProvider) Supports(language string) bool {
	return p.getParser(language) != nil
}

func (p *treeSitterProvider) Parse(ctx context.Context, content []byte, language string) (*Tree, error) {
	lp := p.getParser(language)
	if lp == nil {
		return nil, fmt.Errorf("unsupported language: %s", language)
	}

	lp.mu.Lock()
	tree, err := lp.parser.ParseCtx(ctx, nil, content)
	lp.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("parsing %s content: %w", language, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parser returned no root node")
	}

	return &Tree{
		Root:     convert(root, content),
		Source:   content,
		Language: language,
	}, nil
}

// convert copies the parser-owned tree into an owned Node tree with an
// explicit breadth-first queue. Children deeper than MaxTraversalDepth are
// discarded.
func convert(root *sitter.Node, content []byte) *Node {
	type item struct {
		src *sitter.Node
		dst *Node
	}

	out := newNode(root, content, 0)
	queue := []item{{src: root, dst: out}}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		if it.dst.Depth >= MaxTraversalDepth {
			continue
		}

		count := int(it.src.NamedChildCount())
		for i := 0; i < count; i++ {
			child := it.src.NamedChild(i)
			if child == nil {
				continue
			}
			dst := newNode(child, content, it.dst.Depth+1)
			it.dst.Children = append(it.dst.Children, dst)
			queue = append(queue, item{src: child, dst: dst})
		}
	}

	return out
}

func newNode(n *sitter.Node, content []byte, depth int) *Node {
	node := &Node{
		Type:      n.Type(),
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		Depth:     depth,
	}

	if namedNodeTypes[node.Type] {
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			start, end := int(nameNode.StartByte()), int(nameNode.EndByte())
			if start >= 0 && end <= len(content) && start < end {
				node.Name = string(content[start:end])
			}
		}
	}

	return node
}
