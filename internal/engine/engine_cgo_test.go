//go:build cgo

package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/code-search-helper/internal/chunk"
	"github.com/kkkqkx123/code-search-helper/internal/metrics"
	"github.com/kkkqkx123/code-search-helper/internal/pkg/logger"
	"github.com/kkkqkx123/code-search-helper/internal/strategy"
)

func newRealEngine(t *testing.T, sink metrics.Sink) *Engine {
	t.Helper()
	e, err := New(chunk.DefaultOptions(), sink, logger.Nop())
	require.NoError(t, err)
	return e
}

const goFixture = `package mathutil

import "errors"

func Add(a, b int) int {
	return a + b
}

func Div(a, b int) (int, error) {
	if b == 0 {
		return 0, errors.New("division by zero")
	}
	return a / b, nil
}
`

func TestASTStructuralChunks(t *testing.T) {
	sink := metrics.NewMemorySink()
	e := newRealEngine(t, sink)

	chunks, err := e.ProcessFile(context.Background(), chunk.SourceUnit{Path: "mathutil.go", Content: []byte(goFixture)})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	files := sink.Files()
	require.Len(t, files, 1)
	assert.Equal(t, string(strategy.TierASTStructural), files[0].Tier)

	names := make(map[string]chunk.SnippetKind)
	for _, c := range chunks {
		assert.False(t, c.Degraded)
		if c.Name != "" {
			names[c.Name] = c.Kind
		}
	}
	assert.Equal(t, chunk.KindFunction, names["Add"])
	assert.Equal(t, chunk.KindFunction, names["Div"])

	// Well-structured small file: no two chunks share byte ranges.
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i].StartByte, chunks[i-1].EndByte)
	}
}

func TestOversizeFunctionSplitWithOverlap(t *testing.T) {
	var b strings.Builder
	b.WriteString("package worker\n\n")
	b.WriteString("func Process(items []string) {\n")
	for i := 0; i < 90; i++ {
		fmt.Fprintf(&b, "\thandleItemAtPosition(items, %d) // stage %d of the pipeline\n", i, i)
	}
	b.WriteString("}\n")
	source := b.String()

	e := newRealEngine(t, nil)
	opts := chunk.DefaultOptions()

	chunks, err := e.ProcessFileWith(context.Background(), chunk.SourceUnit{Path: "worker.go", Content: []byte(source)}, opts)
	require.NoError(t, err)

	var parts []chunk.Chunk
	for _, c := range chunks {
		if c.StartLine >= 3 { // the function body region
			parts = append(parts, c)
		}
	}
	require.GreaterOrEqual(t, len(parts), 2, "oversize function should split")

	limit := opts.MaxOverlap()
	for i := 1; i < len(parts); i++ {
		assert.Equal(t, parts[i-1].EndLine+1, parts[i].StartLine, "sub-chunk ranges must stay disjoint")
		assert.LessOrEqual(t, len(parts[i].Content), opts.MaxChunkSize+limit+1)
	}
}

func TestPythonFunctionsExtracted(t *testing.T) {
	src := `import os

def read_config(path):
    with open(path) as fh:
        return fh.read()

def split_lines(raw):
    return [line for line in raw.splitlines() if line]

class Loader:
    def load(self, path):
        return read_config(path)
`
	sink := metrics.NewMemorySink()
	e := newRealEngine(t, sink)

	chunks, err := e.ProcessFile(context.Background(), chunk.SourceUnit{Path: "loader.py", Content: []byte(src)})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	files := sink.Files()
	require.Len(t, files, 1)
	assert.Equal(t, string(strategy.TierASTStructural), files[0].Tier)

	kinds := make(map[chunk.SnippetKind]bool)
	names := make(map[string]bool)
	for _, c := range chunks {
		kinds[c.Kind] = true
		names[c.Name] = true
	}
	assert.True(t, kinds[chunk.KindFunction])
	assert.True(t, names["read_config"])
	assert.True(t, names["load"], "methods win over their enclosing class")

	// The class encloses load and the module root encloses everything;
	// emitted ranges stay pairwise disjoint regardless.
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		assert.Greater(t, cur.StartLine, prev.EndLine,
			"chunk %d-%d overlaps chunk %d-%d", cur.StartLine, cur.EndLine, prev.StartLine, prev.EndLine)
	}
}
