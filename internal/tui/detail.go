package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"provkit/internal/rfc822"
)

type detailModel struct {
	viewport    viewport.Model
	renderer    *glamour.TermRenderer
	entry       unitEntry
	width       int
	height      int
	initialized bool
}

func newDetailModel(entry unitEntry) detailModel {
	return detailModel{entry: entry}
}

func (m *detailModel) initViewport(width, height int) {
	m.width = width
	m.height = height

	// Layout: viewport + status bar (1 line) + help (1 line) + gap (1 line).
	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport = viewport.New(width, vpHeight)

	// Create glamour renderer matched to current width.
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err == nil {
		m.renderer = r
	}

	m.viewport.SetContent(m.renderMarkdown(unitMarkdown(m.entry)))
	m.initialized = true
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.initViewport(size.Width, size.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m detailModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// unitMarkdown lays a unit out as markdown: title, field table and an
// origin footer. Multi-line fields render after the table as fenced
// blocks since table cells cannot hold them.
func unitMarkdown(e unitEntry) string {
	u := e.unit
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", u)
	fmt.Fprintf(&sb, "**Kind:** %s • **Provider:** %s\n\n", u.Kind(), e.provider)
	if u.Virtual() {
		sb.WriteString("*Synthesized during loading, not present in any file.*\n\n")
	}

	sb.WriteString("| Field | Value |\n|---|---|\n")
	var long []rfc822.Field
	for _, f := range u.Record().Fields() {
		if strings.Contains(f.Value, "\n") {
			long = append(long, f)
			continue
		}
		fmt.Fprintf(&sb, "| %s | %s |\n", f.Name, strings.ReplaceAll(f.Value, "|", "\\|"))
	}
	for _, f := range long {
		fmt.Fprintf(&sb, "\n**%s**\n\n```\n%s\n```\n", f.Name, f.Value)
	}

	fmt.Fprintf(&sb, "\n---\n\n*Defined at %s*\n", u.Origin())
	return sb.String()
}

func (m detailModel) View(width, height int) string {
	if !m.initialized {
		return ""
	}

	statusBar := statusBarStyle.
		Width(m.width).
		Render(fmt.Sprintf(" %s • %s • %s", m.entry.provider, m.entry.unit.Kind(), m.entry.unit))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		helpStyle.Render("  ↑/↓ scroll • Esc back • q quit"),
	)
}
