// Package language resolves a language verdict for a source unit from its
// path, its content, or a caller-supplied hint.
package language

import (
	"path/filepath"
	"strings"
)

// Method records which class of evidence produced a verdict.
type Method string

const (
	MethodHint             Method = "hint"
	MethodExtension        Method = "extension"
	MethodContentSignature Method = "content-signature"
	MethodBackupInference  Method = "backup-inference"
	MethodNone             Method = "none"
)

// Verdict is the detector's result for one source unit.
type Verdict struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	ASTCapable bool    `json:"ast_capable"`
	Method     Method  `json:"method"`
}

// backupSuffixes are stripped before re-resolving the inner extension.
var backupSuffixes = []string{".bak", ".backup", ".old", ".tmp", ".orig", ".swo"}

// contentSampleSize bounds how much content the signature scorer reads.
const contentSampleSize = 8192

// Detect resolves a verdict for path and content. Either may be empty.
// Evidence order: backup-suffix inference, extension table, shebang and
// syntax-pattern signatures. Content evidence beats a conflicting extension
// only when at least two patterns match. Never fails; inputs with no
// evidence yield the unknown verdict.
func Detect(path string, content []byte) Verdict {
	sample := contentSample(content)

	if v, ok := detectBackup(path); ok {
		return v
	}

	extLang := byExtension(path)
	contentLang, score := detectContent(sample)

	if extLang != "" {
		if contentLang != "" && contentLang != extLang && score >= 2 {
			return verdict(contentLang, contentConfidence(score), MethodContentSignature)
		}
		return verdict(extLang, 0.9, MethodExtension)
	}

	if contentLang != "" && score >= 1 {
		return verdict(contentLang, contentConfidence(score), MethodContentSignature)
	}

	return Verdict{Language: LangUnknown, Confidence: 0, ASTCapable: false, Method: MethodNone}
}

// DetectWithHint resolves a verdict honoring a caller-supplied hint. A known
// hint wins outright; anything else falls back to Detect.
func DetectWithHint(path string, content []byte, hint string) Verdict {
	if hint != "" && Known(hint) {
		return verdict(hint, 1.0, MethodHint)
	}
	return Detect(path, content)
}

func verdict(lang string, confidence float64, method Method) Verdict {
	return Verdict{
		Language:   lang,
		Confidence: confidence,
		ASTCapable: ASTCapable(lang),
		Method:     method,
	}
}

func detectBackup(path string) (Verdict, bool) {
	if path == "" {
		return Verdict{}, false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, suffix := range backupSuffixes {
		if ext != suffix {
			continue
		}
		inner := byExtension(strings.TrimSuffix(path, ext))
		if inner == "" {
			return Verdict{}, false
		}
		return verdict(inner, 0.95, MethodBackupInference), true
	}
	return Verdict{}, false
}

func byExtension(path string) string {
	if path == "" {
		return ""
	}

	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageExtensions[ext]; ok {
		return lang
	}

	base := strings.ToLower(filepath.Base(path))
	switch {
	case base == "dockerfile", strings.HasPrefix(base, "dockerfile."):
		return "dockerfile"
	case base == "makefile", base == "gnumakefile":
		return "makefile"
	case base == ".gitignore", base == ".dockerignore":
		return "gitignore"
	}

	return ""
}

func detectContent(sample string) (string, int) {
	if sample == "" {
		return "", 0
	}

	if strings.HasPrefix(sample, "#!") {
		firstLine := sample
		if i := strings.IndexByte(sample, '\n'); i >= 0 {
			firstLine = sample[:i]
		}
		if lang := matchShebang(firstLine); lang != "" {
			// Shebang counts as two pattern hits: it is authoritative for
			// scripts with no extension.
			return lang, 2
		}
	}

	return scoreContent(sample)
}

func contentConfidence(score int) float64 {
	c := 0.5 + 0.15*float64(score)
	if c > 0.95 {
		c = 0.95
	}
	return c
}

func contentSample(content []byte) string {
	if len(content) > contentSampleSize {
		return string(content[:contentSampleSize])
	}
	return string(content)
}
