package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/stackplot/pkg/manifest"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// ManifestEntry describes one manifest file offered for selection.
type ManifestEntry struct {
	Path     string
	Title    string
	Plots    int
	Modified time.Time
	Err      error // set when the manifest does not validate
}

// scanManifests lists the *.toml files in dir, newest first.
func scanManifests(dir string) ([]ManifestEntry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, err
	}
	entries := make([]ManifestEntry, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		e := ManifestEntry{Path: p, Modified: info.ModTime()}
		if m, err := manifest.Load(p); err != nil {
			e.Err = err
		} else {
			e.Title = m.Title
			e.Plots = len(m.Plots)
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Modified.After(entries[j].Modified)
	})
	return entries, nil
}

// pickManifest asks the user to choose a manifest from dir. It needs an
// interactive terminal unless dir holds exactly one manifest.
func pickManifest(dir string) (string, error) {
	entries, err := scanManifests(dir)
	if err != nil {
		return "", err
	}
	switch {
	case len(entries) == 0:
		return "", fmt.Errorf("no manifest given and no *.toml files in %s", dir)
	case len(entries) == 1:
		return entries[0].Path, nil
	case !isatty.IsTerminal(os.Stdin.Fd()):
		return "", fmt.Errorf("no manifest given and %d candidates in %s", len(entries), dir)
	}

	final, err := tea.NewProgram(NewManifestListModel(entries)).Run()
	if err != nil {
		return "", err
	}
	m := final.(ManifestListModel)
	if m.Selected == nil {
		return "", fmt.Errorf("no manifest selected")
	}
	return m.Selected.Path, nil
}

// =============================================================================
// ManifestListModel - Interactive manifest selection
// =============================================================================

// ManifestListModel is the bubbletea model for interactive manifest selection.
type ManifestListModel struct {
	Manifests []ManifestEntry
	Cursor    int
	Selected  *ManifestEntry
	Height    int
	Offset    int
}

// NewManifestListModel creates a new manifest list model.
func NewManifestListModel(manifests []ManifestEntry) ManifestListModel {
	return ManifestListModel{Manifests: manifests, Height: 15}
}

func (m ManifestListModel) Init() tea.Cmd {
	return nil
}

func (m ManifestListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Manifests)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Manifests) == 0 || m.Manifests[m.Cursor].Err != nil {
				return m, nil
			}
			m.Selected = &m.Manifests[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m ManifestListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Chart"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Manifests))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Manifests[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		title := e.Title
		plots := fmt.Sprint(e.Plots)
		if e.Err != nil {
			title, plots = "invalid", "—"
		} else if title == "" {
			title = "—"
		}
		rows = append(rows, []string{cursor, filepath.Base(e.Path), title, plots, formatRelativeTime(e.Modified)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Manifest", "Title", "Plots", "Modified").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Manifests) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Manifests[idx].Err != nil {
				base = base.Foreground(colorDim)
			} else if col != 4 {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Manifests))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
