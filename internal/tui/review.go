// Package tui provides a read-only terminal viewer for the manual-review queue.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/taxon/internal/model"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultTableHeight = 20
	chromeHeight       = 8 // title, detail and help lines around the table
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7AA2F7"))
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3a3a3"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#737373"))
	borderColor = lipgloss.Color("#404040")
)

// ReviewModel shows the manual-review queue in a scrollable table.
// It never modifies the queue.
type ReviewModel struct {
	keys    KeyMap
	entries []model.ReviewEntry
	table   table.Model
}

// NewReviewModel builds the viewer for entries.
func NewReviewModel(entries []model.ReviewEntry) ReviewModel {
	columns := []table.Column{
		{Title: "ID", Width: 12},
		{Title: "Name", Width: 24},
		{Title: "Old Category", Width: 22},
		{Title: "New Category", Width: 28},
		{Title: "Confidence", Width: 10},
	}

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		old := e.OldCategory
		if old == "" {
			old = "N/A"
		}
		rows = append(rows, table.Row{e.ID, e.Name, old, e.NewCategory, string(e.Confidence)})
	}

	keys := DefaultKeyMap()
	t := table.New(
		table.WithColumns(columns),
		table.WithKeyMap(keys.tableKeys()),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(defaultTableHeight, max(len(rows), 1))),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#fafafa")).
		Background(lipgloss.Color("#7c3aed")).
		Bold(false)
	t.SetStyles(s)

	return ReviewModel{
		keys:    keys,
		entries: entries,
		table:   t,
	}
}

// Init implements tea.Model.
func (m ReviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if h := msg.Height - chromeHeight; h > 0 {
			m.table.SetHeight(min(h, max(len(m.entries), 1)))
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ReviewModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Manual review queue (%d)", len(m.entries))))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString("No records flagged for manual review.\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
		if e, ok := m.Selected(); ok {
			b.WriteString(detailStyle.Render(fmt.Sprintf("%s: %s", e.Name, e.Reason)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

// Selected returns the entry under the cursor.
func (m ReviewModel) Selected() (model.ReviewEntry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return model.ReviewEntry{}, false
	}
	return m.entries[i], true
}

func (m ReviewModel) helpLine() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// RunReview opens the viewer until the user quits or ctx is canceled.
func RunReview(ctx context.Context, entries []model.ReviewEntry, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	if _, err := tea.NewProgram(NewReviewModel(entries), opts...).Run(); err != nil {
		return fmt.Errorf("review viewer failed: %w", err)
	}
	return nil
}
