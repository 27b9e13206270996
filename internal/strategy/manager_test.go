package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/code-search-helper/internal/chunk"
	"github.com/kkkqkx123/code-search-helper/internal/grammar"
	"github.com/kkkqkx123/code-search-helper/internal/guard"
	"github.com/kkkqkx123/code-search-helper/internal/language"
	"github.com/kkkqkx123/code-search-helper/internal/metrics"
	apperrors "github.com/kkkqkx123/code-search-helper/internal/pkg/errors"
	"github.com/kkkqkx123/code-search-helper/internal/pkg/logger"
)

const goSource = `package demo

import "fmt"

func add(a, b int) int {
	return a + b
}

func greet(name string) {
	fmt.Println("hi", name)
}

var answer = 42
`

const plainText = `Notes on the release.

The cache layer was rewritten for the new key scheme.

Remaining work is tracked in the planning doc.
Everything else ships as is.
And one more line to clear the small file threshold.

A second batch of notes follows here.
With enough lines to split on.
Plus a trailing remark.
`

// stubProvider hands back a prebuilt tree, an error, or a delay.
type stubProvider struct {
	tree  *grammar.Tree
	err   error
	delay time.Duration
}

func (p *stubProvider) Parse(ctx context.Context, content []byte, lang string) (*grammar.Tree, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.tree, nil
}

func (p *stubProvider) Supports(lang string) bool { return true }

// nodeAt builds a node for the first occurrence of snippet in src.
func nodeAt(t *testing.T, src, snippet, typ, name string, depth int) *grammar.Node {
	t.Helper()
	start := strings.Index(src, snippet)
	require.NotEqual(t, -1, start, "snippet %q not found", snippet)
	end := start + len(snippet)
	return &grammar.Node{
		Type:      typ,
		Name:      name,
		StartByte: start,
		EndByte:   end,
		StartLine: 1 + strings.Count(src[:start], "\n"),
		EndLine:   1 + strings.Count(src[:end-1], "\n"),
		Depth:     depth,
	}
}

func goTree(t *testing.T) *grammar.Tree {
	t.Helper()
	root := &grammar.Node{
		Type:    "source_file",
		EndByte: len(goSource),
		Children: []*grammar.Node{
			nodeAt(t, goSource, "package demo", "package_clause", "", 1),
			nodeAt(t, goSource, `import "fmt"`, "import_declaration", "", 1),
			nodeAt(t, goSource, "func add(a, b int) int {\n\treturn a + b\n}", "function_declaration", "add", 1),
			nodeAt(t, goSource, "func greet(name string) {\n\tfmt.Println(\"hi\", name)\n}", "function_declaration", "greet", 1),
		},
	}
	root.EndLine = 1 + strings.Count(goSource, "\n")
	return &grammar.Tree{Root: root, Source: []byte(goSource), Language: "go"}
}

func goVerdict() language.Verdict {
	return language.Verdict{Language: "go", Confidence: 0.9, ASTCapable: true, Method: language.MethodExtension}
}

func textVerdict() language.Verdict {
	return language.Verdict{Language: "markdown", Confidence: 0.9, ASTCapable: false, Method: language.MethodExtension}
}

func newManager(p grammar.Provider, gd *guard.Coordinator, sink metrics.Sink) *Manager {
	return NewManager(p, grammar.NewCaches(8), gd, sink, logger.Nop())
}

func TestASTTier(t *testing.T) {
	mgr := newManager(&stubProvider{tree: goTree(t)}, nil, nil)

	out, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "demo.go", Content: []byte(goSource)}, goVerdict(), chunk.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, TierASTStructural, out.Tier)
	assert.False(t, out.Tier.Degraded())

	kinds := make(map[chunk.SnippetKind]int)
	names := make(map[string]bool)
	for _, c := range out.Candidates {
		kinds[c.Kind]++
		names[c.Name] = true
	}
	assert.Equal(t, 2, kinds[chunk.KindFunction])
	assert.Equal(t, 1, kinds[chunk.KindModule])
	assert.Equal(t, 1, kinds[chunk.KindImport])
	assert.True(t, names["add"])
	assert.True(t, names["greet"])

	// The trailing var declaration has no structural node; it comes back as
	// a statement gap candidate.
	assert.Equal(t, 1, kinds[chunk.KindStatement])

	// Union of candidate ranges covers every non-blank line.
	covered := make(map[int]bool)
	for _, c := range out.Candidates {
		for ln := c.StartLine; ln <= c.EndLine; ln++ {
			covered[ln] = true
		}
	}
	for i, line := range strings.Split(strings.TrimRight(goSource, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		assert.True(t, covered[i+1], "line %d not covered", i+1)
	}
}

func TestParseFailureFallsBack(t *testing.T) {
	sink := metrics.NewMemorySink()
	mgr := newManager(&stubProvider{err: errors.New("grammar crashed")}, nil, sink)

	out, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "demo.go", Content: []byte(goSource)}, goVerdict(), chunk.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, TierSemanticFine, out.Tier)
	assert.True(t, out.Tier.Degraded())
	assert.NotEmpty(t, out.Candidates)

	require.GreaterOrEqual(t, len(out.Attempts), 2)
	assert.Equal(t, TierASTStructural, out.Attempts[0].Tier)
	assert.Contains(t, out.Attempts[0].Reason, "parse failed")

	trans := sink.Transitions()
	require.NotEmpty(t, trans)
	assert.Equal(t, string(TierASTStructural), trans[0].FromTier)
	assert.Equal(t, string(TierSemanticFine), trans[0].ToTier)
}

func TestFallbackRankMonotonic(t *testing.T) {
	mgr := newManager(&stubProvider{err: errors.New("boom")}, nil, nil)

	out, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "demo.go", Content: []byte(goSource)}, goVerdict(), chunk.DefaultOptions())
	require.NoError(t, err)

	prev := -1
	for _, a := range out.Attempts {
		r := rank(a.Tier)
		assert.Greater(t, r, prev, "tier %s out of order", a.Tier)
		prev = r
	}
}

func TestNonASTLanguageSkipsASTTier(t *testing.T) {
	mgr := newManager(&stubProvider{tree: goTree(t)}, nil, nil)

	out, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "notes.md", Content: []byte(plainText)}, textVerdict(), chunk.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, TierSemanticFine, out.Tier)
	for _, a := range out.Attempts {
		assert.NotEqual(t, TierASTStructural, a.Tier)
	}
}

func TestSmallFileBypass(t *testing.T) {
	src := "package tiny\n\nfunc main() {}\n"
	mgr := newManager(&stubProvider{tree: goTree(t)}, nil, nil)

	out, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "tiny.go", Content: []byte(src)}, goVerdict(), chunk.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)

	c := out.Candidates[0]
	assert.Equal(t, chunk.KindModule, c.Kind)
	assert.Equal(t, 1, c.StartLine)
	assert.Equal(t, 3, c.EndLine)
}

func TestForceStrategy(t *testing.T) {
	mgr := newManager(&stubProvider{tree: goTree(t)}, nil, nil)

	opts := chunk.DefaultOptions()
	opts.ForceStrategy = string(TierLine)

	out, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "demo.go", Content: []byte(goSource)}, goVerdict(), opts)
	require.NoError(t, err)
	assert.Equal(t, TierLine, out.Tier)
	require.Len(t, out.Attempts, 1)
}

func TestForceStrategyUnknownNameUsesCascade(t *testing.T) {
	mgr := newManager(&stubProvider{tree: goTree(t)}, nil, nil)

	opts := chunk.DefaultOptions()
	opts.ForceStrategy = "quantum"

	out, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "demo.go", Content: []byte(goSource)}, goVerdict(), opts)
	require.NoError(t, err)
	assert.Equal(t, TierASTStructural, out.Tier)
}

func TestFallbackDisabled(t *testing.T) {
	mgr := newManager(&stubProvider{err: errors.New("boom")}, nil, nil)

	opts := chunk.DefaultOptions()
	opts.EnableFallback = false
	opts.ForceStrategy = string(TierASTStructural)

	_, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "demo.go", Content: []byte(goSource)}, goVerdict(), opts)
	require.Error(t, err)
	assert.True(t, apperrors.IsParseFailure(err))
}

func TestTierTimeout(t *testing.T) {
	mgr := newManager(&stubProvider{tree: goTree(t), delay: 20 * time.Millisecond}, nil, nil)

	opts := chunk.DefaultOptions()
	opts.TierTimeout = time.Millisecond

	out, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "demo.go", Content: []byte(goSource)}, goVerdict(), opts)
	require.NoError(t, err)
	assert.NotEqual(t, TierASTStructural, out.Tier)
	require.NotEmpty(t, out.Attempts)
	assert.Contains(t, out.Attempts[0].Reason, "timed out")
}

func TestErrorBudgetVetoesAST(t *testing.T) {
	sink := metrics.NewMemorySink()
	gd := guard.NewCoordinator(guard.Config{ErrorThreshold: 2}, nil, logger.Nop())
	mgr := newManager(&stubProvider{err: errors.New("boom")}, gd, sink)

	unit := chunk.SourceUnit{Path: "demo.go", Content: []byte(goSource)}
	for i := 0; i < 2; i++ {
		out, err := mgr.Execute(context.Background(), unit, goVerdict(), chunk.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, TierASTStructural, out.Attempts[0].Tier)
	}

	// Budget crossed: the next call must not try AST at all.
	out, err := mgr.Execute(context.Background(), unit, goVerdict(), chunk.DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, out.Attempts)
	assert.Equal(t, TierASTStructural, out.Attempts[0].Tier)
	assert.Contains(t, out.Attempts[0].Reason, "guard veto")

	guardEvents := sink.GuardEvents()
	require.Len(t, guardEvents, 1)
	assert.True(t, guardEvents[0].Degrading)
}

func TestMemoryPressureForcesLineTier(t *testing.T) {
	// A 1 MB ceiling is always below a live test process heap.
	gd := guard.NewCoordinator(guard.Config{MemoryLimitMB: 1}, nil, logger.Nop())
	mgr := newManager(&stubProvider{tree: goTree(t)}, gd, nil)

	out, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "demo.go", Content: []byte(goSource)}, goVerdict(), chunk.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, TierLine, out.Tier)

	for _, a := range out.Attempts[:len(out.Attempts)-1] {
		assert.Contains(t, a.Reason, "memory pressure")
	}
}

func TestEmptyInput(t *testing.T) {
	mgr := newManager(&stubProvider{tree: goTree(t)}, nil, nil)

	for _, content := range []string{"", "   \n\t\n  "} {
		_, err := mgr.Execute(context.Background(), chunk.SourceUnit{Path: "demo.go", Content: []byte(content)}, goVerdict(), chunk.DefaultOptions())
		assert.True(t, apperrors.IsEmptyInput(err), "content %q", content)
	}
}

func TestParsedTreeIsCached(t *testing.T) {
	caches := grammar.NewCaches(8)
	provider := &stubProvider{tree: goTree(t)}
	mgr := NewManager(provider, caches, nil, nil, logger.Nop())

	unit := chunk.SourceUnit{Path: "demo.go", Content: []byte(goSource)}
	_, err := mgr.Execute(context.Background(), unit, goVerdict(), chunk.DefaultOptions())
	require.NoError(t, err)

	trees, extracts := caches.Len()
	assert.Equal(t, 1, trees)
	assert.Greater(t, extracts, 0)
}
