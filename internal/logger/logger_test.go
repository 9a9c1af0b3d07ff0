package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]any{"api_key", "gsk_live", "model", "llama", "Authorization", "Bearer x", "dangling"})
	want := []any{"api_key", redacted, "model", "llama", "Authorization", redacted, "dangling"}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kv[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLogger_RedactsThroughZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.Info("credential stored", "groq_api_key", "gsk_123", "length", 7)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["groq_api_key"] != redacted {
		t.Errorf("api key not redacted: %v", fields["groq_api_key"])
	}
	if fields["length"] != int64(7) {
		t.Errorf("length = %v, want 7", fields["length"])
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("ignored", "k", "v")
	l.With("a", 1).Warn("ignored")
}
