// Package strategy runs the ranked chunking cascade: structural AST
// extraction first, then progressively cruder universal splitters, down to
// fixed line windows. Each attempt consults the guard before running and
// reports its outcome back, so repeated failures or memory pressure push
// the cascade toward the cheap tiers.
package strategy

// Tier identifies one chunking strategy, ordered from most to least
// structure-aware.
type Tier string

const (
	TierASTStructural Tier = "ast_structural"
	TierSemanticFine  Tier = "universal_semantic_fine"
	TierSemantic      Tier = "universal_semantic"
	TierBracket       Tier = "universal_bracket_balanced"
	TierLine          Tier = "universal_line"
)

// cascade is the ranked order tiers are attempted in.
var cascade = []Tier{
	TierASTStructural,
	TierSemanticFine,
	TierSemantic,
	TierBracket,
	TierLine,
}

func (t Tier) String() string { return string(t) }

// Degraded reports whether chunks from this tier carry the degraded flag.
// Only full AST extraction counts as non-degraded output.
func (t Tier) Degraded() bool { return t != TierASTStructural }

// ParseTier resolves a tier name, as used by the force-strategy option.
func ParseTier(s string) (Tier, bool) {
	for _, t := range cascade {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// rank returns a tier's position in the cascade, lower is stronger.
func rank(t Tier) int {
	for i, c := range cascade {
		if c == t {
			return i
		}
	}
	return len(cascade)
}
