package grammar

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kkkqkx123/code-search-helper/internal/pkg/hash"
)

// DefaultCacheSize is the per-cache LRU capacity.
const DefaultCacheSize = 128

// Caches holds the bounded parsed-tree and extraction-result caches. Trees
// stored here are immutable after conversion, so concurrent readers are
// safe; the LRU handles its own locking. These are the only caches the
// guard's forced cleanup purges.
type Caches struct {
	trees    *lru.Cache[string, *Tree]
	extracts *lru.Cache[string, []*Node]
}

// NewCaches creates tree and extraction caches with the given capacity.
func NewCaches(size int) *Caches {
	if size <= 0 {
		size = DefaultCacheSize
	}
	trees, _ := lru.New[string, *Tree](size)
	extracts, _ := lru.New[string, []*Node](size)
	return &Caches{trees: trees, extracts: extracts}
}

// TreeKey derives the cache key for a language/content pair.
func TreeKey(language string, content []byte) string {
	return language + ":" + hash.SHA256Short(content, 32)
}

// GetTree returns a cached parse result.
func (c *Caches) GetTree(key string) (*Tree, bool) {
	if c == nil {
		return nil, false
	}
	return c.trees.Get(key)
}

// PutTree stores a parse result.
func (c *Caches) PutTree(key string, tree *Tree) {
	if c == nil || tree == nil {
		return
	}
	c.trees.Add(key, tree)
}

// GetExtract returns cached extraction results for a tree/kind pair.
func (c *Caches) GetExtract(treeKey string, kind ExtractKind) ([]*Node, bool) {
	if c == nil {
		return nil, false
	}
	return c.extracts.Get(treeKey + ":" + string(kind))
}

// PutExtract stores extraction results.
func (c *Caches) PutExtract(treeKey string, kind ExtractKind, nodes []*Node) {
	if c == nil {
		return
	}
	c.extracts.Add(treeKey+":"+string(kind), nodes)
}

// Purge drops both caches. Called by the guard's forced cleanup.
func (c *Caches) Purge() {
	if c == nil {
		return
	}
	c.trees.Purge()
	c.extracts.Purge()
}

// Len reports cache occupancy, for observability.
func (c *Caches) Len() (trees, extracts int) {
	if c == nil {
		return 0, 0
	}
	return c.trees.Len(), c.extracts.Len()
}
