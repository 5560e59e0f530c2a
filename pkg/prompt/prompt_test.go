package prompt

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }
func u8p(n uint8) *uint8    { return &n }

func TestDefaults(t *testing.T) {
	var d Defaults

	if got, _ := d.Text("name", strp("merlin")); got != "merlin" {
		t.Errorf("Text with default = %q", got)
	}
	if got, _ := d.Text("name", nil); got != "" {
		t.Errorf("Text without default = %q", got)
	}
	if got, _ := d.Confirm("ok?", boolp(true)); !got {
		t.Error("Confirm with default true = false")
	}
	if got, _ := d.Select("lang", []string{"a", "b", "c"}, u8p(2)); got != 2 {
		t.Errorf("Select with default = %d", got)
	}
	if got, _ := d.Select("lang", []string{"a", "b"}, nil); got != 0 {
		t.Errorf("Select without default = %d", got)
	}
	if _, err := d.Select("lang", []string{"a"}, u8p(4)); err == nil {
		t.Error("expected error for out-of-range default")
	}
	if _, err := d.Select("lang", nil, nil); err == nil {
		t.Error("expected error for empty options")
	}
}

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		in       string
		want, ok bool
	}{
		{"y", true, true},
		{"YES", true, true},
		{" n ", false, true},
		{"false", false, true},
		{"maybe", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		got, ok := parseYesNo(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseYesNo(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveOption(t *testing.T) {
	opts := []string{"Rust", "Go", "TinyGo"}
	tests := []struct {
		in   string
		want uint8
		ok   bool
	}{
		{"Go", 1, true},
		{"tinygo", 2, true},
		{"0", 0, true},
		{"3", 0, false},
		{"Zig", 0, false},
	}
	for _, tt := range tests {
		got, ok := resolveOption(tt.in, opts)
		if got != tt.want || ok != tt.ok {
			t.Errorf("resolveOption(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCheckOptionsLimit(t *testing.T) {
	opts := make([]string, 257)
	if err := checkOptions("big", opts); err == nil {
		t.Error("expected error for 257 options")
	}
	if err := checkOptions("ok", opts[:256]); err != nil {
		t.Errorf("256 options: %v", err)
	}
}

func TestScripted(t *testing.T) {
	s := NewScripted(map[string]string{
		"HTTP route": "/api/...",
		"Overwrite?": "no",
		"Language":   "Go",
		"Typo":       "x",
	})

	if got, err := s.Text("HTTP route", strp("/...")); err != nil || got != "/api/..." {
		t.Errorf("Text = %q, %v", got, err)
	}
	if got, err := s.Text("Description", strp("")); err != nil || got != "" {
		t.Errorf("Text fallback = %q, %v", got, err)
	}
	if _, err := s.Text("Unknown", nil); err == nil {
		t.Error("expected error for missing answer without default")
	}
	if got, err := s.Confirm("Overwrite?", boolp(true)); err != nil || got {
		t.Errorf("Confirm = %v, %v", got, err)
	}
	if got, err := s.Select("Language", []string{"Rust", "Go"}, nil); err != nil || got != 1 {
		t.Errorf("Select = %d, %v", got, err)
	}

	unused := s.Unused()
	if len(unused) != 1 || unused[0] != "Typo" {
		t.Errorf("Unused = %v", unused)
	}
}

func TestScriptedBadAnswers(t *testing.T) {
	s := NewScripted(map[string]string{"ok?": "perhaps", "lang": "Zig"})
	if _, err := s.Confirm("ok?", nil); err == nil {
		t.Error("expected error for non yes/no answer")
	}
	if _, err := s.Select("lang", []string{"Rust", "Go"}, nil); err == nil {
		t.Error("expected error for unknown option")
	}
}

func TestLoadScripted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	content := "answers:\n  HTTP route: /api/...\n  Overwrite?: yes\n  Language: 1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScripted(path)
	if err != nil {
		t.Fatalf("LoadScripted: %v", err)
	}
	if got, _ := s.Text("HTTP route", nil); got != "/api/..." {
		t.Errorf("route = %q", got)
	}
	if got, _ := s.Confirm("Overwrite?", nil); !got {
		t.Error("Overwrite? = false")
	}
	if got, _ := s.Select("Language", []string{"Rust", "Go"}, nil); got != 1 {
		t.Errorf("Language = %d", got)
	}
}

func TestLoadScriptedMissingFile(t *testing.T) {
	if _, err := LoadScripted(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func press(m selectModel, msgs ...tea.KeyMsg) selectModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(selectModel)
	}
	return m
}

func TestSelectModelNavigation(t *testing.T) {
	m := newSelectModel("lang", []string{"Rust", "Go", "TinyGo"}, u8p(1))
	if m.cursor != 1 {
		t.Fatalf("initial cursor = %d", m.cursor)
	}

	m = press(m,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown}, // clamps at last
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}},
	)
	if m.cursor != 1 {
		t.Errorf("cursor after moves = %d, want 1", m.cursor)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.chosen || m.cancelled {
		t.Errorf("chosen=%v cancelled=%v", m.chosen, m.cancelled)
	}
}

func TestSelectModelCancel(t *testing.T) {
	m := press(newSelectModel("lang", []string{"a", "b"}, nil), tea.KeyMsg{Type: tea.KeyEsc})
	if !m.cancelled {
		t.Error("esc should cancel")
	}
}

func TestSelectModelDigit(t *testing.T) {
	m := press(newSelectModel("lang", []string{"a", "b", "c"}, nil),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if !m.chosen || m.cursor != 2 {
		t.Errorf("digit 3: chosen=%v cursor=%d", m.chosen, m.cursor)
	}

	m = press(newSelectModel("lang", []string{"a"}, nil),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}})
	if m.chosen {
		t.Error("out-of-range digit should be ignored")
	}
}

func TestPromptStrings(t *testing.T) {
	if got := textPrompt("Description", strp("")); got != "Description: " {
		t.Errorf("textPrompt empty default = %q", got)
	}
	if got := textPrompt("HTTP route", strp("/...")); got != "HTTP route [/...]: " {
		t.Errorf("textPrompt = %q", got)
	}
	if got := confirmPrompt("ok?", boolp(false)); got != "ok? [y/N]: " {
		t.Errorf("confirmPrompt = %q", got)
	}
}
