// Package tui implements a read-only terminal browser over the ledger.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/checkbook/internal/service"
	"github.com/Veraticus/checkbook/internal/tui/themes"
)

// chrome is the number of lines used around the table: title, tabs,
// status and help.
const chrome = 7

// Model holds the browser state.
type Model struct {
	storage   service.Storage
	lastError error
	theme     themes.Theme
	help      help.Model
	keymap    KeyMap
	config    Config
	tables    [viewCount]table.Model
	width     int
	height    int
	view      View
	ready     bool
	quitting  bool
}

func newModel(cfg Config) Model {
	m := Model{
		storage: cfg.Storage,
		theme:   cfg.Theme,
		help:    help.New(),
		keymap:  DefaultKeyMap(),
		config:  cfg,
		width:   cfg.Width,
		height:  cfg.Height,
		view:    ViewAccounts,
	}

	for v := ViewAccounts; v < viewCount; v++ {
		m.tables[v] = table.New(
			table.WithColumns(columnsFor(v)),
			table.WithStyles(cfg.Theme.TableStyles()),
		)
	}
	m.tables[m.view].Focus()
	m.resize()
	return m
}

// Init loads the ledger.
func (m Model) Init() tea.Cmd {
	return m.loadData()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.NextView):
			m.switchView(m.view.next())
			return m, nil
		case key.Matches(msg, m.keymap.PrevView):
			m.switchView(m.view.prev())
			return m, nil
		case key.Matches(msg, m.keymap.Refresh):
			m.ready = false
			return m, m.loadData()
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case dataLoadedMsg:
		m.ready = true
		m.lastError = msg.err
		if msg.err == nil {
			m.tables[ViewAccounts].SetRows(accountRows(msg.accounts))
			m.tables[ViewTransactions].SetRows(transactionRows(msg.transactions))
			m.tables[ViewTypes].SetRows(typeRows(msg.types))
			m.tables[ViewSchedules].SetRows(scheduleRows(msg.schedules))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.tables[m.view], cmd = m.tables[m.view].Update(msg)
	return m, cmd
}

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Checkbook"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.theme.Box.Render(m.tables[m.view].View()))
	b.WriteString("\n")
	if status := m.renderStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Help.Render(m.help.View(m.keymap)))
	return b.String()
}

func (m *Model) switchView(v View) {
	m.tables[m.view].Blur()
	m.view = v
	m.tables[m.view].Focus()
}

func (m *Model) resize() {
	height := m.height - chrome
	if height < 3 {
		height = 3
	}
	for v := range m.tables {
		m.tables[v].SetHeight(height)
	}
	m.help.Width = m.width
}
