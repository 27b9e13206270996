package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kkkqkx123/code-search-helper/internal/chunk"
	"github.com/kkkqkx123/code-search-helper/internal/grammar"
	"github.com/kkkqkx123/code-search-helper/internal/guard"
	"github.com/kkkqkx123/code-search-helper/internal/language"
	"github.com/kkkqkx123/code-search-helper/internal/metrics"
	apperrors "github.com/kkkqkx123/code-search-helper/internal/pkg/errors"
	"github.com/kkkqkx123/code-search-helper/internal/pkg/logger"
	"github.com/kkkqkx123/code-search-helper/internal/textsplit"
)

// Attempt records one tier try. Reason is empty when the tier succeeded.
type Attempt struct {
	Tier   Tier
	Reason string
}

// Outcome is the result of one cascade run: the winning tier, its raw
// candidates, and the attempt trail for observability.
type Outcome struct {
	Tier       Tier
	Candidates []chunk.Candidate
	Attempts   []Attempt
}

// Manager owns the cascade. Safe for concurrent use: all per-call state
// lives on the stack, shared components synchronize internally.
type Manager struct {
	provider grammar.Provider
	caches   *grammar.Caches
	guard    *guard.Coordinator
	sink     metrics.Sink
	log      *logger.Logger
}

// NewManager wires the cascade. Nil sink and log default to no-ops; a nil
// guard coordinator gets a disabled one.
func NewManager(provider grammar.Provider, caches *grammar.Caches, gd *guard.Coordinator, sink metrics.Sink, log *logger.Logger) *Manager {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if gd == nil {
		gd = guard.NewCoordinator(guard.Config{}, nil, log)
	}
	return &Manager{
		provider: provider,
		caches:   caches,
		guard:    gd,
		sink:     sink,
		log:      log,
	}
}

// Execute runs the cascade for one source unit and returns the first tier
// outcome that produced candidates. Options must already be normalized.
func (m *Manager) Execute(ctx context.Context, unit chunk.SourceUnit, verdict language.Verdict, opts chunk.Options) (*Outcome, error) {
	content := string(unit.Content)
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.EmptyInput()
	}

	log := m.log.WithFile(unit.Path)

	// Small files skip multi-chunk splitting entirely.
	if textsplit.TotalLines(content) <= opts.SmallFileLines {
		if out, ok := wholeFileOutcome(content); ok {
			log.Debug("small file bypass", "lines", textsplit.TotalLines(content))
			return out, nil
		}
	}

	cfg := textsplit.ConfigFromOptions(opts)
	plan := m.plan(verdict, opts, log)
	out := &Outcome{}

	// A tier error anywhere in this call counts against the guard budget
	// even when a lower tier later succeeds, so consecutive parse failures
	// across files still trip the threshold.
	sawError := false

	for i, tier := range plan {
		reason := m.vetoReason(tier)

		if reason == "" {
			cands, err := m.runTier(ctx, tier, unit, content, verdict.Language, cfg, opts)
			switch {
			case err != nil:
				reason = err.Error()
				sawError = true
				m.recordFailure()
			case len(cands) == 0:
				reason = "no candidates"
			default:
				if !sawError {
					m.guard.ReportSuccess()
				}
				out.Tier = tier
				out.Candidates = cands
				out.Attempts = append(out.Attempts, Attempt{Tier: tier})
				return out, nil
			}
		}

		out.Attempts = append(out.Attempts, Attempt{Tier: tier, Reason: reason})

		next := ""
		if i+1 < len(plan) {
			next = string(plan[i+1])
		}
		log.WithTier(string(tier)).Debug("tier did not produce chunks",
			"reason", reason, "next", next)
		m.sink.RecordTierTransition(metrics.TierTransition{
			Path:     unit.Path,
			FromTier: string(tier),
			ToTier:   next,
			Reason:   reason,
		})

		if !opts.EnableFallback {
			break
		}
	}

	return nil, apperrors.ParseFailure("all chunking tiers exhausted", nil).
		WithDetail("path", unit.Path)
}

// plan builds the tier sequence for this call: the ranked cascade minus
// tiers the language cannot use, or the forced tier followed by its
// fallbacks.
func (m *Manager) plan(verdict language.Verdict, opts chunk.Options, log *logger.Logger) []Tier {
	astUsable := verdict.ASTCapable && m.provider != nil && m.provider.Supports(verdict.Language)

	if opts.ForceStrategy != "" {
		forced, ok := ParseTier(opts.ForceStrategy)
		if !ok {
			log.Warn("unknown forced strategy, using ranked cascade", "strategy", opts.ForceStrategy)
		} else {
			seq := []Tier{forced}
			if opts.EnableFallback {
				for _, t := range cascade {
					if rank(t) > rank(forced) {
						seq = append(seq, t)
					}
				}
			}
			if !astUsable {
				seq = dropAST(seq)
			}
			return seq
		}
	}

	seq := make([]Tier, 0, len(cascade))
	for _, t := range cascade {
		if t == TierASTStructural && !astUsable {
			continue
		}
		seq = append(seq, t)
	}
	return seq
}

func dropAST(seq []Tier) []Tier {
	out := seq[:0]
	for _, t := range seq {
		if t != TierASTStructural {
			out = append(out, t)
		}
	}
	return out
}

// vetoReason consults the guard before an attempt. Memory pressure allows
// only the line tier; a blown error budget vetoes the AST tier.
func (m *Manager) vetoReason(tier Tier) string {
	st := m.guard.Check()
	switch {
	case st.FallbackOnly() && tier != TierLine:
		return "guard veto: memory pressure"
	case st.SkipAST() && tier == TierASTStructural:
		return "guard veto: error budget exceeded"
	}
	return ""
}

// recordFailure feeds the guard error budget and surfaces the state change
// when the budget is crossed.
func (m *Manager) recordFailure() {
	if !m.guard.ReportFailure() {
		return
	}
	snap := m.guard.Snapshot()
	m.sink.RecordGuardStateChange(metrics.GuardStateChange{
		Degrading:      snap.Degrading,
		MemoryPressure: snap.FallbackRecommended,
		HeapBytes:      snap.HeapBytes,
	})
}

// runTier executes one tier under the soft time budget. Panics from a tier
// are normalized into parse failures so the cascade can continue.
func (m *Manager) runTier(ctx context.Context, tier Tier, unit chunk.SourceUnit, content, lang string, cfg textsplit.Config, opts chunk.Options) (cands []chunk.Candidate, err error) {
	if opts.TierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TierTimeout)
		defer cancel()
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			cands = nil
			err = apperrors.ParseFailure(fmt.Sprintf("tier panic: %v", r), nil)
		}
	}()

	switch tier {
	case TierASTStructural:
		cands, err = m.runAST(ctx, unit, lang)
	case TierSemanticFine:
		cands = textsplit.SemanticFine(content, cfg)
	case TierSemantic:
		cands = textsplit.Semantic(content, cfg)
	case TierBracket:
		cands = textsplit.BracketBalanced(content, cfg)
	case TierLine:
		cands = textsplit.LineWindow(content, cfg)
	default:
		err = apperrors.InternalError("unknown tier "+string(tier), nil)
	}

	if err == nil && opts.TierTimeout > 0 && time.Since(start) > opts.TierTimeout {
		return nil, apperrors.TimeoutError(string(tier))
	}
	return cands, err
}

// wholeFileOutcome wraps content as a single module-kind candidate, used
// for files at or below the small-file threshold. Returns false when the
// content fails basic validation so the normal cascade runs instead.
func wholeFileOutcome(content string) (*Outcome, bool) {
	cand := textsplit.WholeFile(content)
	if strings.TrimSpace(cand.Content) == "" || chunk.IsBareDelimiter(cand.Content) {
		return nil, false
	}
	cand.Kind = chunk.KindModule
	return &Outcome{
		Tier:       TierSemanticFine,
		Candidates: []chunk.Candidate{cand},
		Attempts:   []Attempt{{Tier: TierSemanticFine}},
	}, true
}
