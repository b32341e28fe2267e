package tui

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"clipped", "hello world", 5, "hello"},
		{"multibyte not split", "héllo wörld", 7, "héllo w"},
		{"wide runes counted by column", "日本語のテスト", 5, "日本"},
		{"zero budget leaves text alone", "hello", 0, "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.in, tc.max)
			if got != tc.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestViewEventsRespectsWidth(t *testing.T) {
	app := New()
	app.Update(tea.WindowSizeMsg{Width: 30, Height: 24})
	app.Update(AgentEventMsg{
		Timestamp: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Kind:      "assistant",
		Message:   strings.Repeat("créate partition für docs ", 10),
	})

	for _, line := range strings.Split(app.viewEvents(), "\n") {
		if w := lipgloss.Width(line); w > 30 {
			t.Errorf("event line is %d columns wide, want at most 30: %q", w, line)
		}
		if !utf8.ValidString(line) {
			t.Errorf("event line is invalid UTF-8: %q", line)
		}
	}
}
