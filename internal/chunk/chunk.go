// Package chunk defines the data model shared across the chunking engine:
// source units, chunk candidates, final chunks, and processing options.
package chunk

import (
	"strings"

	"github.com/kkkqkx123/code-search-helper/internal/pkg/hash"
)

// SourceUnit is the immutable input to one processing call. The engine never
// mutates or retains it beyond the call.
type SourceUnit struct {
	// Path is optional; used for provenance and extension hints.
	Path string

	// Content is the raw file content.
	Content []byte

	// LanguageHint optionally pre-supplies the language, bypassing detection
	// confidence rules when set to a known language.
	LanguageHint string
}

// Candidate is one fragment before post-processing. Produced by exactly one
// strategy tier; immutable once created.
type Candidate struct {
	Content    string      `json:"content"`
	StartLine  int         `json:"start_line"` // 1-based, inclusive
	EndLine    int         `json:"end_line"`   // 1-based, inclusive
	StartByte  int         `json:"start_byte,omitempty"`
	EndByte    int         `json:"end_byte,omitempty"`
	Kind       SnippetKind `json:"kind"`
	Name       string      `json:"name,omitempty"` // function/class name when known
	Complexity int         `json:"complexity"`
}

// Chunk is the final, externally visible unit: a Candidate plus a stable
// index within its file and provenance metadata.
type Chunk struct {
	ID         string      `json:"id"`
	Path       string      `json:"path,omitempty"`
	Language   string      `json:"language"`
	Content    string      `json:"content"`
	StartLine  int         `json:"start_line"`
	EndLine    int         `json:"end_line"`
	StartByte  int         `json:"start_byte,omitempty"`
	EndByte    int         `json:"end_byte,omitempty"`
	Kind       SnippetKind `json:"kind"`
	Name       string      `json:"name,omitempty"`
	Complexity int         `json:"complexity"`
	Index      int         `json:"index"`
	Degraded   bool        `json:"degraded"`
	Hash       string      `json:"hash"`
}

// NewChunk builds a Chunk from a post-processed candidate.
func NewChunk(path, language string, c Candidate, index int, degraded bool) Chunk {
	return Chunk{
		ID:         hash.ChunkID(path, c.StartLine, c.EndLine),
		Path:       path,
		Language:   language,
		Content:    c.Content,
		StartLine:  c.StartLine,
		EndLine:    c.EndLine,
		StartByte:  c.StartByte,
		EndByte:    c.EndByte,
		Kind:       c.Kind,
		Name:       c.Name,
		Complexity: c.Complexity,
		Index:      index,
		Degraded:   degraded,
		Hash:       hash.ChunkContent(c.Content),
	}
}

// LineCount returns the number of lines in content. Empty content has zero
// lines; a trailing newline does not open a new line.
func LineCount(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n") + 1
	if strings.HasSuffix(content, "\n") {
		n--
	}
	return n
}

// bareDelimiters are single-character fragments that are never valid chunks.
var bareDelimiters = map[string]bool{
	"{": true, "}": true, "(": true, ")": true,
	"[": true, "]": true, ";": true, ",": true,
}

// IsBareDelimiter reports whether trimmed content is a lone structural
// delimiter such as "}".
func IsBareDelimiter(content string) bool {
	return bareDelimiters[strings.TrimSpace(content)]
}

// Validate checks the chunk invariants: ordered line range starting at 1 and
// content that is present and not a bare delimiter. Content may span more
// lines than the range when an overlap region was injected.
func (c *Chunk) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return errEmptyContent
	}
	if IsBareDelimiter(c.Content) {
		return errBareDelimiter
	}
	if c.StartLine < 1 || c.StartLine > c.EndLine {
		return errBadLineRange
	}
	return nil
}
