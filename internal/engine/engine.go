// Package engine is the chunking entry point callers use: language
// detection, the guarded strategy cascade, and post-processing behind one
// ProcessFile call. The engine is synchronous and re-entrant; concurrent
// callers share only the guard coordinator and the bounded parse caches.
package engine

import (
	"bytes"
	"context"
	"time"
	"unicode/utf8"

	"github.com/kkkqkx123/code-search-helper/internal/chunk"
	"github.com/kkkqkx123/code-search-helper/internal/grammar"
	"github.com/kkkqkx123/code-search-helper/internal/guard"
	"github.com/kkkqkx123/code-search-helper/internal/language"
	"github.com/kkkqkx123/code-search-helper/internal/metrics"
	"github.com/kkkqkx123/code-search-helper/internal/postprocess"
	apperrors "github.com/kkkqkx123/code-search-helper/internal/pkg/errors"
	"github.com/kkkqkx123/code-search-helper/internal/pkg/logger"
	"github.com/kkkqkx123/code-search-helper/internal/strategy"
)

// binaryProbeSize bounds the NUL scan used to reject binary input.
const binaryProbeSize = 8000

// Engine wires the pipeline. Safe for concurrent use.
type Engine struct {
	opts    chunk.Options
	caches  *grammar.Caches
	guard   *guard.Coordinator
	manager *strategy.Manager
	sink    metrics.Sink
	log     *logger.Logger
}

// New builds an engine with the platform grammar provider. Zero option
// fields are filled from defaults.
func New(opts chunk.Options, sink metrics.Sink, log *logger.Logger) (*Engine, error) {
	return NewWithProvider(grammar.NewProvider(), opts, sink, log)
}

// NewWithProvider builds an engine around an explicit grammar provider.
func NewWithProvider(provider grammar.Provider, opts chunk.Options, sink metrics.Sink, log *logger.Logger) (*Engine, error) {
	opts = opts.Normalized()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.Default()
	}

	caches := grammar.NewCaches(grammar.DefaultCacheSize)
	gd := guard.NewCoordinator(guard.Config{
		MemoryLimitMB:       opts.MemoryLimitMB,
		MemoryCheckInterval: opts.MemoryCheckInterval,
		ErrorThreshold:      opts.ErrorThreshold,
		ResetWindow:         opts.ErrorResetWindow,
	}, caches.Purge, log)

	return &Engine{
		opts:    opts,
		caches:  caches,
		guard:   gd,
		manager: strategy.NewManager(provider, caches, gd, sink, log),
		sink:    sink,
		log:     log,
	}, nil
}

// Options returns the engine's default options.
func (e *Engine) Options() chunk.Options { return e.opts }

// GuardState exposes the guard snapshot for observability surfaces.
func (e *Engine) GuardState() guard.State { return e.guard.Snapshot() }

// ResetGuard clears the error budget and degraded state between batches.
func (e *Engine) ResetGuard() { e.guard.Reset() }

// ProcessFile chunks one source unit with the engine's default options.
func (e *Engine) ProcessFile(ctx context.Context, unit chunk.SourceUnit) ([]chunk.Chunk, error) {
	return e.ProcessFileWith(ctx, unit, e.opts)
}

// ProcessFileWith chunks one source unit with per-call options. Empty
// input yields an empty list, not an error; unreadable bytes are the only
// hard failure.
func (e *Engine) ProcessFileWith(ctx context.Context, unit chunk.SourceUnit, opts chunk.Options) ([]chunk.Chunk, error) {
	opts = opts.Normalized()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	if len(bytes.TrimSpace(unit.Content)) == 0 {
		return nil, nil
	}
	if !readableText(unit.Content) {
		return nil, apperrors.UnrecoverableIO("content is not readable text", nil).
			WithDetail("path", unit.Path)
	}

	verdict := language.DetectWithHint(unit.Path, unit.Content, unit.LanguageHint)

	outcome, err := e.manager.Execute(ctx, unit, verdict, opts)
	if err != nil {
		if apperrors.IsEmptyInput(err) {
			return nil, nil
		}
		return nil, err
	}

	chunks := postprocess.Process(unit, verdict.Language, outcome.Tier, outcome.Candidates, opts, e.log)

	e.sink.RecordFileProcessed(metrics.FileProcessed{
		Path:     unit.Path,
		Language: verdict.Language,
		Tier:     string(outcome.Tier),
		Chunks:   len(chunks),
		Degraded: outcome.Tier.Degraded(),
		Duration: time.Since(start),
	})
	e.log.WithFile(unit.Path).Debug("file processed",
		"language", verdict.Language,
		"tier", string(outcome.Tier),
		"chunks", len(chunks),
		"duration", time.Since(start))

	return chunks, nil
}

// readableText rejects invalid UTF-8 and NUL-bearing binary content.
func readableText(content []byte) bool {
	if !utf8.Valid(content) {
		return false
	}
	probe := content
	if len(probe) > binaryProbeSize {
		probe = probe[:binaryProbeSize]
	}
	return bytes.IndexByte(probe, 0) < 0
}
