package chunk

import (
	"fmt"
	"strings"
	"time"
)

// Options controls one processing call. Zero numeric fields are filled from
// defaults by Normalized; construct by hand starting from DefaultOptions.
type Options struct {
	// MaxChunkSize is the chunk size ceiling in characters.
	MaxChunkSize int

	// MinChunkSize is the smallest acceptable chunk in characters.
	MinChunkSize int

	// OverlapSize is the requested overlap in characters where overlap
	// injection applies.
	OverlapSize int

	// MaxOverlapRatio caps overlap at MaxChunkSize*MaxOverlapRatio.
	MaxOverlapRatio float64

	// MemoryLimitMB is the heap ceiling sampled by the guard. Zero disables
	// memory-based degradation.
	MemoryLimitMB int

	// MemoryCheckInterval throttles memory sampling.
	MemoryCheckInterval time.Duration

	// ErrorThreshold is the consecutive-error count that forces degraded
	// mode.
	ErrorThreshold int

	// ErrorResetWindow is how long the guard waits without errors before
	// clearing degraded mode.
	ErrorResetWindow time.Duration

	// SmallFileLines is the line count at or below which a file is returned
	// as a single whole-file chunk.
	SmallFileLines int

	// MinLinesPerChunk is the minimum accumulated line count before a
	// balanced boundary is honored.
	MinLinesPerChunk int

	// MaxLinesPerChunk forces a boundary regardless of bracket depth.
	MaxLinesPerChunk int

	// TierTimeout is the per-tier soft time budget. Zero disables it.
	TierTimeout time.Duration

	// ForceStrategy names a tier to run instead of the ranked cascade.
	// Still subject to guard vetoes.
	ForceStrategy string

	// EnableFallback allows advancing to lower tiers on failure. When false
	// a failed tier ends the attempt with whatever the line tier produces.
	EnableFallback bool
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MaxChunkSize:        2000,
		MinChunkSize:        5,
		OverlapSize:         200,
		MaxOverlapRatio:     0.3,
		MemoryLimitMB:       0,
		MemoryCheckInterval: 5 * time.Second,
		ErrorThreshold:      5,
		ErrorResetWindow:    60 * time.Second,
		SmallFileLines:      10,
		MinLinesPerChunk:    5,
		MaxLinesPerChunk:    50,
		ForceStrategy:       "",
		EnableFallback:      true,
	}
}

// Normalized returns a copy with zero numeric fields replaced by defaults.
// EnableFallback and ForceStrategy are taken as given.
func (o Options) Normalized() Options {
	def := DefaultOptions()
	if o.MaxChunkSize == 0 {
		o.MaxChunkSize = def.MaxChunkSize
	}
	if o.MinChunkSize == 0 {
		o.MinChunkSize = def.MinChunkSize
	}
	if o.OverlapSize == 0 {
		o.OverlapSize = def.OverlapSize
	}
	if o.MaxOverlapRatio == 0 {
		o.MaxOverlapRatio = def.MaxOverlapRatio
	}
	if o.MemoryCheckInterval == 0 {
		o.MemoryCheckInterval = def.MemoryCheckInterval
	}
	if o.ErrorThreshold == 0 {
		o.ErrorThreshold = def.ErrorThreshold
	}
	if o.ErrorResetWindow == 0 {
		o.ErrorResetWindow = def.ErrorResetWindow
	}
	if o.SmallFileLines == 0 {
		o.SmallFileLines = def.SmallFileLines
	}
	if o.MinLinesPerChunk == 0 {
		o.MinLinesPerChunk = def.MinLinesPerChunk
	}
	if o.MaxLinesPerChunk == 0 {
		o.MaxLinesPerChunk = def.MaxLinesPerChunk
	}
	return o
}

// Validate validates the options, collecting all problems.
func (o Options) Validate() error {
	var errs []string

	if o.MaxChunkSize < 1 {
		errs = append(errs, "max_chunk_size must be positive")
	}
	if o.MinChunkSize < 1 {
		errs = append(errs, "min_chunk_size must be positive")
	}
	if o.MinChunkSize >= o.MaxChunkSize {
		errs = append(errs, "min_chunk_size must be less than max_chunk_size")
	}
	if o.OverlapSize < 0 {
		errs = append(errs, "overlap_size must not be negative")
	}
	if o.MaxOverlapRatio < 0 || o.MaxOverlapRatio > 1 {
		errs = append(errs, "max_overlap_ratio must be between 0 and 1")
	}
	if o.MemoryLimitMB < 0 {
		errs = append(errs, "memory_limit_mb must not be negative")
	}
	if o.ErrorThreshold < 1 {
		errs = append(errs, "error_threshold must be positive")
	}
	if o.ErrorResetWindow < 0 {
		errs = append(errs, "error_reset_window must not be negative")
	}
	if o.MinLinesPerChunk < 1 {
		errs = append(errs, "min_lines_per_chunk must be positive")
	}
	if o.MaxLinesPerChunk < o.MinLinesPerChunk {
		errs = append(errs, "max_lines_per_chunk must be at least min_lines_per_chunk")
	}

	if len(errs) > 0 {
		return fmt.Errorf("options validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// MaxOverlap returns the effective overlap cap in characters:
// min(OverlapSize, MaxChunkSize*MaxOverlapRatio).
func (o Options) MaxOverlap() int {
	limit := int(float64(o.MaxChunkSize) * o.MaxOverlapRatio)
	if o.OverlapSize < limit {
		return o.OverlapSize
	}
	return limit
}
