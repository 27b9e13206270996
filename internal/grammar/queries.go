package grammar

import "github.com/kkkqkx123/code-search-helper/internal/chunk"

// ExtractKind selects which structural level Extract looks for.
type ExtractKind string

const (
	ExtractFunction ExtractKind = "function"
	ExtractClass    ExtractKind = "class"
	ExtractModule   ExtractKind = "module"
	ExtractImport   ExtractKind = "import"
)

// ExtractKinds is the order the AST tier requests structural levels in.
var ExtractKinds = []ExtractKind{ExtractFunction, ExtractClass, ExtractModule, ExtractImport}

// structuralQuery is a declarative node-type pattern for one language/kind
// pair: the node types to collect and whether nested matches are kept.
type structuralQuery struct {
	nodeTypes []string
	nested    bool
}

// queries registers grammar-specific structural patterns. A missing entry
// falls back to the generic type-set traversal.
var queries = map[string]map[ExtractKind]structuralQuery{
	"go": {
		ExtractFunction: {nodeTypes: []string{"function_declaration", "method_declaration"}},
		ExtractClass:    {nodeTypes: []string{"type_declaration"}},
		ExtractImport:   {nodeTypes: []string{"import_declaration"}},
		ExtractModule:   {nodeTypes: []string{"package_clause"}},
	},
	"python": {
		ExtractFunction: {nodeTypes: []string{"function_definition"}, nested: true},
		ExtractClass:    {nodeTypes: []string{"class_definition"}},
		ExtractImport:   {nodeTypes: []string{"import_statement", "import_from_statement"}},
	},
	"javascript": {
		ExtractFunction: {nodeTypes: []string{"function_declaration", "method_definition", "generator_function_declaration", "arrow_function"}},
		ExtractClass:    {nodeTypes: []string{"class_declaration"}},
		ExtractImport:   {nodeTypes: []string{"import_statement"}},
	},
	"typescript": {
		ExtractFunction: {nodeTypes: []string{"function_declaration", "method_definition", "arrow_function"}},
		ExtractClass:    {nodeTypes: []string{"class_declaration", "interface_declaration", "enum_declaration"}},
		ExtractImport:   {nodeTypes: []string{"import_statement"}},
	},
	"java": {
		ExtractFunction: {nodeTypes: []string{"method_declaration", "constructor_declaration"}, nested: true},
		ExtractClass:    {nodeTypes: []string{"class_declaration", "interface_declaration", "enum_declaration", "record_declaration"}},
		ExtractImport:   {nodeTypes: []string{"import_declaration"}},
	},
	"rust": {
		ExtractFunction: {nodeTypes: []string{"function_item"}, nested: true},
		ExtractClass:    {nodeTypes: []string{"struct_item", "enum_item", "trait_item", "impl_item"}},
		ExtractImport:   {nodeTypes: []string{"use_declaration"}},
		ExtractModule:   {nodeTypes: []string{"mod_item"}},
	},
	"c": {
		ExtractFunction: {nodeTypes: []string{"function_definition"}},
		ExtractClass:    {nodeTypes: []string{"struct_specifier", "enum_specifier", "union_specifier"}},
		ExtractImport:   {nodeTypes: []string{"preproc_include"}},
	},
	"cpp": {
		ExtractFunction: {nodeTypes: []string{"function_definition"}, nested: true},
		ExtractClass:    {nodeTypes: []string{"class_specifier", "struct_specifier", "enum_specifier"}},
		ExtractImport:   {nodeTypes: []string{"preproc_include"}},
		ExtractModule:   {nodeTypes: []string{"namespace_definition"}},
	},
	"csharp": {
		ExtractFunction: {nodeTypes: []string{"method_declaration", "constructor_declaration"}, nested: true},
		ExtractClass:    {nodeTypes: []string{"class_declaration", "interface_declaration", "struct_declaration", "enum_declaration"}},
		ExtractImport:   {nodeTypes: []string{"using_directive"}},
		ExtractModule:   {nodeTypes: []string{"namespace_declaration"}},
	},
}

// genericTypeSets is the hard-coded cross-language fallback used when no
// query is registered for a language/kind pair or a query yields nothing.
var genericTypeSets = map[ExtractKind][]string{
	ExtractFunction: {
		"function_declaration", "function_definition", "function_item",
		"method_declaration", "method_definition", "constructor_declaration",
		"generator_function_declaration", "arrow_function", "lambda",
	},
	ExtractClass: {
		"class_declaration", "class_definition", "class_specifier",
		"interface_declaration", "struct_item", "struct_specifier",
		"struct_declaration", "enum_declaration", "enum_item", "enum_specifier",
		"trait_item", "impl_item", "type_declaration", "record_declaration",
	},
	ExtractModule: {
		"package_clause", "namespace_definition", "namespace_declaration",
		"mod_item", "module",
	},
	ExtractImport: {
		"import_declaration", "import_statement", "import_from_statement",
		"use_declaration", "using_directive", "preproc_include",
	},
}

// nodeKinds maps grammar node types to the closed SnippetKind enumeration.
var nodeKinds = map[string]chunk.SnippetKind{
	"function_declaration":           chunk.KindFunction,
	"function_definition":            chunk.KindFunction,
	"function_item":                  chunk.KindFunction,
	"generator_function_declaration": chunk.KindFunction,
	"arrow_function":                 chunk.KindFunction,
	"lambda":                         chunk.KindFunction,
	"method_declaration":             chunk.KindMethod,
	"method_definition":              chunk.KindMethod,
	"constructor_declaration":        chunk.KindMethod,
	"class_declaration":              chunk.KindClass,
	"class_definition":               chunk.KindClass,
	"class_specifier":                chunk.KindClass,
	"struct_item":                    chunk.KindClass,
	"struct_specifier":               chunk.KindClass,
	"struct_declaration":             chunk.KindClass,
	"enum_declaration":               chunk.KindClass,
	"enum_item":                      chunk.KindClass,
	"enum_specifier":                 chunk.KindClass,
	"union_specifier":                chunk.KindClass,
	"record_declaration":             chunk.KindClass,
	"type_declaration":               chunk.KindClass,
	"interface_declaration":          chunk.KindInterface,
	"trait_item":                     chunk.KindInterface,
	"impl_item":                      chunk.KindClass,
	"package_clause":                 chunk.KindModule,
	"namespace_definition":           chunk.KindModule,
	"namespace_declaration":          chunk.KindModule,
	"mod_item":                       chunk.KindModule,
	"module":                         chunk.KindModule,
	"import_declaration":             chunk.KindImport,
	"import_statement":               chunk.KindImport,
	"import_from_statement":          chunk.KindImport,
	"use_declaration":                chunk.KindImport,
	"using_directive":                chunk.KindImport,
	"preproc_include":                chunk.KindImport,
	"if_statement":                   chunk.KindConditional,
	"switch_statement":               chunk.KindConditional,
	"for_statement":                  chunk.KindLoop,
	"while_statement":                chunk.KindLoop,
	"comment":                        chunk.KindComment,
}

// KindForNodeType maps a grammar node type to a SnippetKind, defaulting to
// KindGeneric for structural nodes the enumeration does not distinguish.
func KindForNodeType(nodeType string) chunk.SnippetKind {
	if k, ok := nodeKinds[nodeType]; ok {
		return k
	}
	return chunk.KindGeneric
}

// namedNodeTypes lists node types whose "name" field is captured during
// conversion.
var namedNodeTypes = map[string]bool{
	"function_declaration":    true,
	"function_definition":     true,
	"function_item":           true,
	"method_declaration":      true,
	"method_definition":       true,
	"constructor_declaration": true,
	"class_declaration":       true,
	"class_definition":        true,
	"class_specifier":         true,
	"struct_item":             true,
	"struct_specifier":        true,
	"struct_declaration":      true,
	"enum_declaration":        true,
	"enum_item":               true,
	"interface_declaration":   true,
	"trait_item":              true,
	"type_declaration":        true,
	"record_declaration":      true,
	"namespace_definition":    true,
	"namespace_declaration":   true,
	"mod_item":                true,
}
