package ui

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

var _ Painter = (*Palette)(nil)

func TestPalette(t *testing.T) {
	var buf bytes.Buffer
	p := NewPalette(&buf)

	tests := []struct {
		name  string
		paint func(string) string
	}{
		{"Title", p.Title},
		{"OK", p.OK},
		{"Err", p.Err},
		{"Warn", p.Warn},
		{"Help", p.Help},
		{"As", func(s string) string { return p.As(s, lipgloss.Color(colorOK)) }},
		{"On", func(s string) string { return p.On(s, lipgloss.Color(colorErr)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.paint("hello"); got != "hello" {
				t.Errorf("non-terminal output should be unstyled, got %q", got)
			}
		})
	}
}
