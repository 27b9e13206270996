// Package guard enforces the engine's memory and error budgets. A single
// Coordinator is shared by every processing call on an engine instance;
// callers consult it before each strategy attempt and report every outcome.
package guard

import (
	"runtime"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kkkqkx123/code-search-helper/internal/pkg/logger"
)

// Config bounds the coordinator.
type Config struct {
	// MemoryLimitMB is the heap ceiling. Zero disables memory checks.
	MemoryLimitMB int

	// MemoryCheckInterval throttles heap sampling.
	MemoryCheckInterval time.Duration

	// ErrorThreshold is the consecutive-error count entering Degrading.
	ErrorThreshold int

	// ResetWindow clears Degrading after this long without errors.
	ResetWindow time.Duration
}

// Status is the synchronous verdict consulted before a strategy attempt.
// Memory pressure and error budget are independent triggers.
type Status struct {
	// Degrading is set after the consecutive-error threshold: AST tiers are
	// skipped until the window resets.
	Degrading bool

	// MemoryPressure forces entry at the line tier, vetoing heavier tiers.
	MemoryPressure bool

	// HeapBytes is the most recent heap sample.
	HeapBytes uint64
}

// FallbackOnly reports whether only the line tier may run.
func (s Status) FallbackOnly() bool {
	return s.MemoryPressure
}

// SkipAST reports whether structural AST tiers are vetoed.
func (s Status) SkipAST() bool {
	return s.Degrading || s.MemoryPressure
}

// State is an observability snapshot of the coordinator.
type State struct {
	HeapBytes           uint64
	ConsecutiveErrors   int
	Degrading           bool
	FallbackRecommended bool
}

// Coordinator owns the budgets. Safe for concurrent use; locks are held only
// for state mutation, never across sampling or cleanup work scheduling.
type Coordinator struct {
	cfg Config
	log *logger.Logger

	// cleanup purges the shared parse caches during forced cleanup.
	cleanup func()

	// Injection points for tests.
	readHeap  func() uint64
	requestGC func()
	now       func() time.Time

	sampler  rate.Sometimes
	sampleMu sync.Mutex

	mu                sync.Mutex
	heapBytes         uint64
	memoryPressure    bool
	consecutiveErrors int
	lastErrorAt       time.Time
	degrading         bool
}

// NewCoordinator creates a coordinator. cleanup may be nil when no caches
// are registered.
func NewCoordinator(cfg Config, cleanup func(), log *logger.Logger) *Coordinator {
	if cfg.MemoryCheckInterval <= 0 {
		cfg.MemoryCheckInterval = 5 * time.Second
	}
	if cfg.ErrorThreshold <= 0 {
		cfg.ErrorThreshold = 5
	}
	if cfg.ResetWindow <= 0 {
		cfg.ResetWindow = 60 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Coordinator{
		cfg:       cfg,
		log:       log,
		cleanup:   cleanup,
		readHeap:  heapInUse,
		requestGC: runtime.GC,
		now:       time.Now,
		sampler:   rate.Sometimes{Interval: cfg.MemoryCheckInterval},
	}
}

// Check returns the current status, sampling memory at most once per
// configured interval and clearing Degrading once the window has elapsed
// without errors.
func (c *Coordinator) Check() Status {
	c.sampleMemory()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeResetLocked()

	return Status{
		Degrading:      c.degrading,
		MemoryPressure: c.memoryPressure,
		HeapBytes:      c.heapBytes,
	}
}

// ReportSuccess records a successful processing attempt, clearing the
// consecutive-error counter. Degrading persists until the window resets.
func (c *Coordinator) ReportSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveErrors = 0
	c.maybeResetLocked()
}

// ReportFailure records a failed attempt. It returns true when this failure
// crossed the threshold and entered Degrading, which also triggers forced
// cleanup.
func (c *Coordinator) ReportFailure() bool {
	c.mu.Lock()

	// Stale errors outside the window do not accumulate.
	if !c.lastErrorAt.IsZero() && c.now().Sub(c.lastErrorAt) >= c.cfg.ResetWindow {
		c.consecutiveErrors = 0
	}

	c.consecutiveErrors++
	c.lastErrorAt = c.now()

	entered := false
	if !c.degrading && c.consecutiveErrors >= c.cfg.ErrorThreshold {
		c.degrading = true
		entered = true
	}
	errs := c.consecutiveErrors
	c.mu.Unlock()

	if entered {
		c.log.Warn("error budget exceeded, entering degraded mode", "consecutive_errors", errs)
		c.ForceCleanup()
	}
	return entered
}

// Reset explicitly clears the error budget and Degrading state, for callers
// starting a new batch.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveErrors = 0
	c.lastErrorAt = time.Time{}
	c.degrading = false
}

// ForceCleanup purges the registered caches and requests garbage
// collection.
func (c *Coordinator) ForceCleanup() {
	if c.cleanup != nil {
		c.cleanup()
	}
	c.requestGC()
	c.log.Debug("forced cleanup completed")
}

// Snapshot returns an observability snapshot.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		HeapBytes:           c.heapBytes,
		ConsecutiveErrors:   c.consecutiveErrors,
		Degrading:           c.degrading,
		FallbackRecommended: c.degrading || c.memoryPressure,
	}
}

func (c *Coordinator) maybeResetLocked() {
	if !c.degrading {
		return
	}
	if c.lastErrorAt.IsZero() || c.now().Sub(c.lastErrorAt) >= c.cfg.ResetWindow {
		c.degrading = false
		c.consecutiveErrors = 0
		c.log.Info("error window elapsed, leaving degraded mode")
	}
}

func (c *Coordinator) sampleMemory() {
	if c.cfg.MemoryLimitMB <= 0 {
		return
	}

	c.sampleMu.Lock()
	c.sampler.Do(func() {
		heap := c.readHeap()
		limit := uint64(c.cfg.MemoryLimitMB) * 1024 * 1024
		pressure := heap > limit

		c.mu.Lock()
		changed := pressure != c.memoryPressure
		c.heapBytes = heap
		c.memoryPressure = pressure
		c.mu.Unlock()

		if changed && pressure {
			c.log.Warn("memory ceiling exceeded, forcing line-tier fallback",
				"heap_bytes", heap, "limit_mb", c.cfg.MemoryLimitMB)
		}
		if pressure {
			c.ForceCleanup()
		}
	})
	c.sampleMu.Unlock()
}

func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapInuse
}
