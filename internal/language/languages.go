package language

import "sort"

// Language identifiers used throughout the engine.
const (
	LangGo         = "go"
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangJava       = "java"
	LangRust       = "rust"
	LangC          = "c"
	LangCPP        = "cpp"
	LangCSharp     = "csharp"
	LangUnknown    = "unknown"
)

// languageExtensions maps file extensions to language identifiers.
var languageExtensions = map[string]string{
	".go":      LangGo,
	".ts":      LangTypeScript,
	".tsx":     LangTypeScript,
	".js":      LangJavaScript,
	".jsx":     LangJavaScript,
	".mjs":     LangJavaScript,
	".py":      LangPython,
	".pyi":     LangPython,
	".rs":      LangRust,
	".java":    LangJava,
	".c":       LangC,
	".h":       LangC,
	".cpp":     LangCPP,
	".cc":      LangCPP,
	".cxx":     LangCPP,
	".hpp":     LangCPP,
	".hh":      LangCPP,
	".cs":      LangCSharp,
	".rb":      "ruby",
	".php":     "php",
	".swift":   "swift",
	".kt":      "kotlin",
	".kts":     "kotlin",
	".scala":   "scala",
	".md":      "markdown",
	".json":    "json",
	".yaml":    "yaml",
	".yml":     "yaml",
	".toml":    "toml",
	".sql":     "sql",
	".sh":      "bash",
	".bash":    "bash",
	".zsh":     "bash",
	".html":    "html",
	".htm":     "html",
	".css":     "css",
	".scss":    "scss",
	".less":    "less",
	".vue":     "vue",
	".svelte":  "svelte",
	".lua":     "lua",
	".r":       "r",
	".pl":      "perl",
	".pm":      "perl",
	".ex":      "elixir",
	".exs":     "elixir",
	".erl":     "erlang",
	".hs":      "haskell",
	".clj":     "clojure",
	".ml":      "ocaml",
	".mli":     "ocaml",
	".nim":     "nim",
	".zig":     "zig",
	".proto":   "protobuf",
	".graphql": "graphql",
	".gql":     "graphql",
	".txt":     "text",
}

// astCapable is the fixed set of grammar-backed languages. Membership is
// never inferred from content.
var astCapable = map[string]bool{
	LangGo:         true,
	LangPython:     true,
	LangJavaScript: true,
	LangTypeScript: true,
	LangJava:       true,
	LangRust:       true,
	LangC:          true,
	LangCPP:        true,
	LangCSharp:     true,
}

// ASTCapable reports whether lang has grammar (AST) support.
func ASTCapable(lang string) bool {
	return astCapable[lang]
}

// Known reports whether lang is a recognized language identifier.
func Known(lang string) bool {
	if lang == "" || lang == LangUnknown {
		return false
	}
	for _, l := range languageExtensions {
		if l == lang {
			return true
		}
	}
	switch lang {
	case "dockerfile", "makefile", "gitignore":
		return true
	}
	return false
}

// All returns the sorted list of recognized language identifiers.
func All() []string {
	seen := make(map[string]bool)
	for _, l := range languageExtensions {
		seen[l] = true
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
