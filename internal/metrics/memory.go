package metrics

import "sync"

// MemorySink buffers events in memory. Useful for tests and for hosts that
// poll engine activity instead of streaming it.
type MemorySink struct {
	mu          sync.Mutex
	transitions []TierTransition
	guardEvents []GuardStateChange
	files       []FileProcessed
}

// NewMemorySink creates an empty buffering sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) RecordTierTransition(e TierTransition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, e)
}

func (s *MemorySink) RecordGuardStateChange(e GuardStateChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guardEvents = append(s.guardEvents, e)
}

func (s *MemorySink) RecordFileProcessed(e FileProcessed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, e)
}

// Transitions returns a copy of the buffered tier transitions.
func (s *MemorySink) Transitions() []TierTransition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TierTransition, len(s.transitions))
	copy(out, s.transitions)
	return out
}

// GuardEvents returns a copy of the buffered guard state changes.
func (s *MemorySink) GuardEvents() []GuardStateChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GuardStateChange, len(s.guardEvents))
	copy(out, s.guardEvents)
	return out
}

// Files returns a copy of the buffered file-processed events.
func (s *MemorySink) Files() []FileProcessed {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FileProcessed, len(s.files))
	copy(out, s.files)
	return out
}

// Reset discards buffered events.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = nil
	s.guardEvents = nil
	s.files = nil
}
