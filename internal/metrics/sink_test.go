package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kkkqkx123/code-search-helper/internal/pkg/logger"
)

func TestNopSink(t *testing.T) {
	var s Sink = NopSink{}
	s.RecordTierTransition(TierTransition{})
	s.RecordGuardStateChange(GuardStateChange{})
	s.RecordFileProcessed(FileProcessed{})
}

func TestMemorySink(t *testing.T) {
	s := NewMemorySink()
	s.RecordTierTransition(TierTransition{Path: "a.py"})
	s.RecordTierTransition(TierTransition{Path: "b.py"})
	s.RecordGuardStateChange(GuardStateChange{Degrading: true})
	s.RecordFileProcessed(FileProcessed{Path: "a.py", Chunks: 3})

	if got := len(s.Transitions()); got != 2 {
		t.Fatalf("transitions = %d, want 2", got)
	}
	if got := s.GuardEvents(); len(got) != 1 || !got[0].Degrading {
		t.Fatalf("guard events = %+v", got)
	}
	if got := s.Files(); len(got) != 1 || got[0].Chunks != 3 {
		t.Fatalf("files = %+v", got)
	}

	s.Reset()
	if len(s.Transitions()) != 0 || len(s.GuardEvents()) != 0 || len(s.Files()) != 0 {
		t.Fatal("reset did not clear events")
	}
}

func TestLogSinkOutput(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(logger.NewWithWriter(&buf, "debug", "text"))

	s.RecordTierTransition(TierTransition{Path: "a.py", FromTier: "ast_structural", ToTier: "universal_semantic_fine", Reason: "zero candidates"})
	s.RecordGuardStateChange(GuardStateChange{Degrading: true})
	s.RecordFileProcessed(FileProcessed{Path: "a.py", Chunks: 3})

	out := buf.String()
	for _, want := range []string{"tier transition", "guard state change", "file processed", "universal_semantic_fine"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output", want)
		}
	}
}
