// Package metrics defines the observability sink the engine reports to.
// The engine functions with the no-op sink; hosts plug in their own
// collector.
package metrics

import (
	"time"

	"github.com/kkkqkx123/code-search-helper/internal/pkg/logger"
)

// TierTransition is emitted whenever the strategy manager advances tiers.
type TierTransition struct {
	Path     string
	FromTier string
	ToTier   string
	Reason   string
}

// GuardStateChange is emitted when the guard enters or leaves a budget
// state.
type GuardStateChange struct {
	Degrading      bool
	MemoryPressure bool
	HeapBytes      uint64
}

// FileProcessed is emitted once per completed processing call.
type FileProcessed struct {
	Path     string
	Language string
	Tier     string
	Chunks   int
	Degraded bool
	Duration time.Duration
}

// Sink receives engine events synchronously. Implementations must be safe
// for concurrent use and must not block.
type Sink interface {
	RecordTierTransition(e TierTransition)
	RecordGuardStateChange(e GuardStateChange)
	RecordFileProcessed(e FileProcessed)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordTierTransition(TierTransition)     {}
func (NopSink) RecordGuardStateChange(GuardStateChange) {}
func (NopSink) RecordFileProcessed(FileProcessed)       {}

// LogSink writes events to the structured logger at debug level.
type LogSink struct {
	Log *logger.Logger
}

// NewLogSink creates a sink logging to log.
func NewLogSink(log *logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSink{Log: log}
}

func (s *LogSink) RecordTierTransition(e TierTransition) {
	s.Log.Debug("tier transition",
		"file", e.Path, "from", e.FromTier, "to", e.ToTier, "reason", e.Reason)
}

func (s *LogSink) RecordGuardStateChange(e GuardStateChange) {
	s.Log.Debug("guard state change",
		"degrading", e.Degrading, "memory_pressure", e.MemoryPressure, "heap_bytes", e.HeapBytes)
}

func (s *LogSink) RecordFileProcessed(e FileProcessed) {
	s.Log.Debug("file processed",
		"file", e.Path, "language", e.Language, "tier", e.Tier,
		"chunks", e.Chunks, "degraded", e.Degraded, "duration", e.Duration)
}
