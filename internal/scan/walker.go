// Package scan walks directory trees for chunkable source files.
package scan

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSize skips files larger than this many bytes.
const DefaultMaxFileSize = 4 << 20

// Walker filters a tree against include/exclude glob patterns.
type Walker struct {
	includes    []string
	excludes    []string
	maxFileSize int64
}

// NewWalker creates a walker. Empty includes means everything.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes:    includes,
		excludes:    excludes,
		maxFileSize: DefaultMaxFileSize,
	}
}

// WithMaxFileSize sets the per-file size ceiling. Zero disables it.
func (w *Walker) WithMaxFileSize(n int64) *Walker {
	w.maxFileSize = n
	return w
}

// FileInfo describes one matched file.
type FileInfo struct {
	Path string // absolute
	Rel  string // relative to the walk root
	Size int64
}

// Walk returns the files under root matching the patterns, in walk order.
func (w *Walker) Walk(root string) ([]FileInfo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && w.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.maxFileSize > 0 && info.Size() > w.maxFileSize {
			return nil
		}
		if w.included(rel) && !w.excluded(rel) {
			files = append(files, FileInfo{Path: path, Rel: rel, Size: info.Size()})
		}
		return nil
	})

	return files, err
}

func (w *Walker) included(path string) bool {
	for _, pattern := range w.includes {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Walker) excluded(path string) bool {
	for _, pattern := range w.excludes {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
