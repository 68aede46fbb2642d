package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"provkit/internal/provider"
)

type loadingModel struct {
	spinner spinner.Model
}

func newLoadingModel() loadingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return loadingModel{spinner: sp}
}

// loadedMsg is sent once every provider has finished loading. The
// providers travel with the message so nothing reads them while the
// load is still running.
type loadedMsg struct {
	providers []*provider.Provider
	problems  []string
}

func loadProviders(providers []*provider.Provider) tea.Cmd {
	return func() tea.Msg {
		var problems []string
		for _, p := range providers {
			for _, err := range p.Load(provider.DefaultLoadOptions()) {
				problems = append(problems, err.Error())
			}
		}
		return loadedMsg{providers: providers, problems: problems}
	}
}

func (m loadingModel) Update(msg tea.Msg) (loadingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m loadingModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  ◆ provkit") + "\n"
	s += subtitleStyle.Render("  Provider content browser") + "\n\n"
	s += fmt.Sprintf("  %s %s\n", m.spinner.View(), "Loading providers...")
	return s
}
