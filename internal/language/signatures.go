package language

import "regexp"

// shebangs maps interpreter names found on a #! line to languages.
var shebangs = map[string]string{
	"python":  LangPython,
	"python3": LangPython,
	"python2": LangPython,
	"node":    LangJavaScript,
	"sh":      "bash",
	"bash":    "bash",
	"zsh":     "bash",
	"ruby":    "ruby",
	"perl":    "perl",
}

var shebangRe = regexp.MustCompile(`^#!\s*(?:/usr/bin/env\s+)?(?:\S*/)?(\S+)`)

// syntaxPatterns holds per-language pattern sets. A language's content score
// is the number of matching patterns; content evidence overrides extension
// evidence only at score >= 2.
var syntaxPatterns = map[string][]*regexp.Regexp{
	LangGo: {
		regexp.MustCompile(`(?m)^package \w+`),
		regexp.MustCompile(`(?m)^func \w+\s*\(`),
		regexp.MustCompile(`(?m)^type \w+ struct`),
		regexp.MustCompile(`(?m)^import \(`),
	},
	LangPython: {
		regexp.MustCompile(`(?m)^def \w+\s*\(`),
		regexp.MustCompile(`(?m)^class \w+[(:]`),
		regexp.MustCompile(`(?m)^from \w+ import `),
		regexp.MustCompile(`(?m)^if __name__ == `),
	},
	LangJavaScript: {
		regexp.MustCompile(`(?m)^function \w+\s*\(`),
		regexp.MustCompile(`(?m)^const \w+ = `),
		regexp.MustCompile(`require\(['"]`),
		regexp.MustCompile(`module\.exports`),
	},
	LangTypeScript: {
		regexp.MustCompile(`(?m)^interface \w+ \{`),
		regexp.MustCompile(`(?m)^export (?:default )?(?:class|function|const|interface|type) `),
		regexp.MustCompile(`: (?:string|number|boolean)\b`),
		regexp.MustCompile(`(?m)^type \w+ = `),
	},
	LangJava: {
		regexp.MustCompile(`(?m)^package [\w.]+;`),
		regexp.MustCompile(`(?m)^import java\.`),
		regexp.MustCompile(`(?:public|private|protected) (?:static )?(?:final )?class \w+`),
		regexp.MustCompile(`public static void main`),
	},
	LangRust: {
		regexp.MustCompile(`(?m)^(?:pub )?fn \w+`),
		regexp.MustCompile(`(?m)^use \w+(?:::\w+)*`),
		regexp.MustCompile(`let mut \w+`),
		regexp.MustCompile(`(?m)^impl(?:<[^>]+>)? \w+`),
	},
	LangC: {
		regexp.MustCompile(`(?m)^#include\s*<\w+\.h>`),
		regexp.MustCompile(`(?m)^int main\s*\(`),
		regexp.MustCompile(`(?m)^(?:typedef )?struct \w+`),
		regexp.MustCompile(`(?m)^#define \w+`),
	},
	LangCPP: {
		regexp.MustCompile(`(?m)^#include\s*<\w+>`),
		regexp.MustCompile(`(?m)^namespace \w+`),
		regexp.MustCompile(`std::\w+`),
		regexp.MustCompile(`(?m)^template\s*<`),
	},
	LangCSharp: {
		regexp.MustCompile(`(?m)^using System`),
		regexp.MustCompile(`(?m)^namespace [\w.]+`),
		regexp.MustCompile(`(?:public|internal) (?:sealed )?(?:partial )?class \w+`),
	},
	"ruby": {
		regexp.MustCompile(`(?m)^def \w+`),
		regexp.MustCompile(`(?m)^require ['"]`),
		regexp.MustCompile(`(?m)^end$`),
	},
	"bash": {
		regexp.MustCompile(`(?m)^\w+\(\) \{`),
		regexp.MustCompile(`(?m)^(?:export |local )\w+=`),
		regexp.MustCompile(`\$\{\w+\}`),
	},
}

// matchShebang returns the language indicated by a leading #! line, or "".
func matchShebang(firstLine string) string {
	m := shebangRe.FindStringSubmatch(firstLine)
	if m == nil {
		return ""
	}
	return shebangs[m[1]]
}

// scoreContent returns the best-scoring language for content and its pattern
// hit count. Ties resolve to the lexically smallest language so detection is
// deterministic.
func scoreContent(content string) (string, int) {
	best := ""
	bestScore := 0
	for lang, patterns := range syntaxPatterns {
		score := 0
		for _, re := range patterns {
			if re.MatchString(content) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && score > 0 && lang < best) {
			best = lang
			bestScore = score
		}
	}
	return best, bestScore
}
