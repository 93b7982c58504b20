package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGenerateState(t *testing.T) {
	t.Run("is url safe", func(t *testing.T) {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("GenerateState() error = %v", err)
		}
		if len(state) != 32 {
			t.Errorf("GenerateState() length = %d, want 32", len(state))
		}
		if strings.ContainsAny(state, "+/=") {
			t.Errorf("GenerateState() = %q, contains non url-safe characters", state)
		}
	})

	t.Run("is unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 50 {
			state, err := GenerateState()
			if err != nil {
				t.Fatalf("GenerateState() error = %v", err)
			}
			if seen[state] {
				t.Fatalf("GenerateState() produced duplicate %q", state)
			}
			seen[state] = true
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Errorf("GenerateID() returned the same id twice: %s", a)
	}
	if len(a) != 36 {
		t.Errorf("GenerateID() = %q, want uuid string", a)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	SetLogLevel(logger, log.DebugLevel)

	child := WithLogger(logger, "component", "test")
	child.Debug("hello")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("expected log output to contain message, got %q", out)
	}
	if !strings.Contains(out, "component=test") {
		t.Errorf("expected log output to contain key-value pair, got %q", out)
	}
}
