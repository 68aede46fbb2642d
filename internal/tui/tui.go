package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"provkit/internal/provider"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewList
	ViewDetail
)

// Config holds configuration passed from the CLI layer. The providers
// arrive constructed but not yet loaded; loading happens inside the
// program so the UI can show progress.
type Config struct {
	Providers []*provider.Provider
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	width  int
	height int

	loading loadingModel
	list    listModel
	detail  detailModel
	err     error
}

// New creates a new TUI model with the given config.
func New(cfg Config) Model {
	return Model{
		state:   ViewLoading,
		config:  cfg,
		loading: newLoadingModel(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loading.spinner.Tick, loadProviders(m.config.Providers))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == ViewDetail {
			var c tea.Cmd
			m.detail, c = m.detail.Update(msg)
			return m, c
		}
		return m, nil

	case loadedMsg:
		m.list = newListModel(msg.providers, msg.problems)
		m.state = ViewList
		return m, nil

	case tea.KeyMsg:
		// Global quit. While the filter is being typed, q is just
		// another character.
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !(m.state == ViewList && m.list.filtering) {
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd

	switch m.state {
	case ViewLoading:
		m.loading, cmd = m.loading.Update(msg)
		return m, cmd

	case ViewList:
		wasFiltering := m.list.filtering
		m.list, cmd = m.list.Update(msg)
		if cmd != nil {
			return m, cmd
		}
		// Enter opens the selected unit, unless it just committed
		// the filter text.
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && !wasFiltering {
			if entry, ok := m.list.selected(); ok {
				m.detail = newDetailModel(entry)
				m.detail.initViewport(m.width, m.height)
				m.state = ViewDetail
			}
		}

	case ViewDetail:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.state = ViewList
			return m, nil
		}
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}

	switch m.state {
	case ViewLoading:
		return m.loading.View(m.width, m.height)
	case ViewList:
		return m.list.View(m.width, m.height)
	case ViewDetail:
		return m.detail.View(m.width, m.height)
	}
	return ""
}

// Run starts the TUI program.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
