package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestScanManifests(t *testing.T) {
	path := writeChart(t)
	dir := filepath.Dir(path)
	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("plots = 3"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	entries, err := scanManifests(dir)
	if err != nil {
		t.Fatalf("scanManifests() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("scanManifests() found %d entries, want 2", len(entries))
	}
	if entries[0].Path != broken || entries[0].Err == nil {
		t.Errorf("entries[0] = %+v, want the newer broken manifest", entries[0])
	}
	if entries[1].Title != "Sales" || entries[1].Plots != 1 {
		t.Errorf("entries[1] = %+v, want title Sales with 1 plot", entries[1])
	}
}

func TestPickManifestSingle(t *testing.T) {
	path := writeChart(t)
	got, err := pickManifest(filepath.Dir(path))
	if err != nil {
		t.Fatalf("pickManifest() error: %v", err)
	}
	if got != path {
		t.Errorf("pickManifest() = %q, want %q", got, path)
	}

	if _, err := pickManifest(t.TempDir()); err == nil {
		t.Error("pickManifest() on an empty directory should fail")
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m ManifestListModel, keys ...string) ManifestListModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(ManifestListModel)
	}
	return m
}

func TestManifestListModel(t *testing.T) {
	entries := []ManifestEntry{
		{Path: "a.toml", Title: "A", Plots: 1, Modified: time.Now()},
		{Path: "b.toml", Err: errors.New("bad"), Modified: time.Now()},
		{Path: "c.toml", Title: "C", Plots: 2, Modified: time.Now()},
	}

	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"select first", []string{"enter"}, "a.toml"},
		{"skip invalid", []string{"down", "enter"}, ""},
		{"move and select", []string{"j", "j", "enter"}, "c.toml"},
		{"clamped at end", []string{"down", "down", "down", "enter"}, "c.toml"},
		{"up at top", []string{"up", "k", "enter"}, "a.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := update(NewManifestListModel(entries), tt.keys...)
			got := ""
			if m.Selected != nil {
				got = m.Selected.Path
			}
			if got != tt.want {
				t.Errorf("Selected = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestManifestListModelScrolls(t *testing.T) {
	entries := make([]ManifestEntry, 10)
	for i := range entries {
		entries[i] = ManifestEntry{Path: string(rune('a'+i)) + ".toml", Modified: time.Now()}
	}
	m := NewManifestListModel(entries)
	m.Height = 3

	m = update(m, "down", "down", "down", "down")
	if m.Cursor != 4 || m.Offset != 2 {
		t.Errorf("Cursor, Offset = %d, %d; want 4, 2", m.Cursor, m.Offset)
	}
	if view := m.View(); !strings.Contains(view, "e.toml") || strings.Contains(view, "a.toml") {
		t.Errorf("View() should show the scrolled window:\n%s", view)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
		{time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), "Jan 2, 2020"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.t); got != tt.want {
			t.Errorf("formatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
