package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"provkit/internal/provider"
	"provkit/internal/unit"
)

// kindFilters are the states the tab key cycles through. The empty
// string shows every kind.
var kindFilters = []string{"", unit.KindJob, unit.KindCategory, unit.KindTestPlan, unit.KindFile}

// unitEntry pairs a unit with the name of the provider it came from.
type unitEntry struct {
	unit     unit.Unit
	provider string
}

type listModel struct {
	entries   []unitEntry
	visible   []int // indexes into entries after filtering
	cursor    int
	filter    string
	filtering bool
	kindIdx   int
	problems  []string
	providers int
}

func newListModel(providers []*provider.Provider, problems []string) listModel {
	m := listModel{problems: problems, providers: len(providers)}
	for _, p := range providers {
		for _, u := range p.Units() {
			m.entries = append(m.entries, unitEntry{unit: u, provider: p.Name()})
		}
	}
	m.refresh()
	return m
}

// refresh recomputes the visible rows from the active filters and
// clamps the cursor.
func (m *listModel) refresh() {
	kind := kindFilters[m.kindIdx]
	needle := strings.ToLower(m.filter)
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if kind != "" && e.unit.Kind() != kind {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.unit.String()), needle) {
			continue
		}
		m.visible = append(m.visible, i)
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m listModel) selected() (unitEntry, bool) {
	if len(m.visible) == 0 || m.cursor >= len(m.visible) {
		return unitEntry{}, false
	}
	return m.entries[m.visible[m.cursor]], true
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch keyMsg.Type {
		case tea.KeyEnter:
			m.filtering = false
		case tea.KeyEscape:
			m.filtering = false
			m.filter = ""
			m.refresh()
		case tea.KeyBackspace:
			if m.filter != "" {
				m.filter = m.filter[:len(m.filter)-1]
				m.refresh()
			}
		case tea.KeyRunes:
			m.filter += string(keyMsg.Runes)
			m.refresh()
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "/":
		m.filtering = true
	case "tab":
		m.kindIdx = (m.kindIdx + 1) % len(kindFilters)
		m.refresh()
	case "esc":
		if m.filter != "" {
			m.filter = ""
			m.refresh()
		}
	}
	return m, nil
}

func (m listModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  ◆ provkit") + "\n"
	s += subtitleStyle.Render(fmt.Sprintf("  %d units across %d provider(s)", len(m.entries), m.providers)) + "\n\n"

	kind := kindFilters[m.kindIdx]
	if kind == "" {
		kind = "all"
	}
	status := fmt.Sprintf("kind: %s", kind)
	if m.filtering {
		status += fmt.Sprintf(" • filter: %s█", m.filter)
	} else if m.filter != "" {
		status += fmt.Sprintf(" • filter: %s", m.filter)
	}
	s += dimStyle.Render("  "+status)
	if len(m.problems) > 0 {
		s += warnStyle.Render(fmt.Sprintf("  ⚠ %d problem(s)", len(m.problems)))
	}
	s += "\n\n"

	if len(m.entries) == 0 {
		s += dimStyle.Render("  No units loaded.") + "\n"
		return s
	}
	if len(m.visible) == 0 {
		s += dimStyle.Render("  No units match the active filters.") + "\n\n"
		s += helpStyle.Render("  Esc clear filter • Tab kind • q quit") + "\n"
		return s
	}

	// Window the rows around the cursor so it stays on screen.
	maxRows := height - 8
	if maxRows < 5 {
		maxRows = 5
	}
	top := 0
	if m.cursor >= maxRows {
		top = m.cursor - maxRows + 1
	}
	end := top + maxRows
	if end > len(m.visible) {
		end = len(m.visible)
	}

	for i := top; i < end; i++ {
		e := m.entries[m.visible[i]]
		cursor := "  "
		style := listItemStyle
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		line := fmt.Sprintf("%-10s %s", e.unit.Kind(), e.unit)
		s += fmt.Sprintf("  %s%s", cursor, style.Render(line))
		if e.unit.Virtual() {
			s += virtualStyle.Render(" (virtual)")
		}
		s += "\n"
	}
	if end < len(m.visible) {
		s += dimStyle.Render(fmt.Sprintf("  … %d more", len(m.visible)-end)) + "\n"
	}

	s += "\n"
	if m.filtering {
		s += helpStyle.Render("  type to filter • Enter apply • Esc clear") + "\n"
	} else {
		s += helpStyle.Render("  ↑/↓ navigate • Enter details • / filter • Tab kind • q quit") + "\n"
	}
	return s
}
