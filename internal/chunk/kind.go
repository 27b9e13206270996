package chunk

// SnippetKind classifies the structural role of a chunk. It is a closed
// enumeration; unrecognized values normalize to KindUnknown.
type SnippetKind string

const (
	KindFunction    SnippetKind = "function"
	KindClass       SnippetKind = "class"
	KindMethod      SnippetKind = "method"
	KindInterface   SnippetKind = "interface"
	KindModule      SnippetKind = "module"
	KindImport      SnippetKind = "import"
	KindStatement   SnippetKind = "statement"
	KindConditional SnippetKind = "conditional"
	KindLoop        SnippetKind = "loop"
	KindComment     SnippetKind = "comment"
	KindGeneric     SnippetKind = "generic"
	KindUnknown     SnippetKind = "unknown"
)

var validKinds = map[SnippetKind]bool{
	KindFunction:    true,
	KindClass:       true,
	KindMethod:      true,
	KindInterface:   true,
	KindModule:      true,
	KindImport:      true,
	KindStatement:   true,
	KindConditional: true,
	KindLoop:        true,
	KindComment:     true,
	KindGeneric:     true,
	KindUnknown:     true,
}

// Valid reports whether k is a member of the closed enumeration.
func (k SnippetKind) Valid() bool {
	return validKinds[k]
}

// ParseKind normalizes a string to a SnippetKind, mapping anything outside
// the closed set to KindUnknown.
func ParseKind(s string) SnippetKind {
	k := SnippetKind(s)
	if k.Valid() {
		return k
	}
	return KindUnknown
}
