package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/checkbook/internal/testutil"
)

func loadedModel(t *testing.T, fixture testutil.Fixture) Model {
	t.Helper()

	db := testutil.SetupTestDB(t, fixture)
	cfg := defaultConfig()
	cfg.Storage = db.Storage
	m := newModel(cfg)

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	loaded, ok := msg.(dataLoadedMsg)
	require.True(t, ok, "expected dataLoadedMsg, got %T", msg)
	require.NoError(t, loaded.err)

	return update(t, m, loaded)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated
}

func TestModel_LoadsEveryView(t *testing.T) {
	m := loadedModel(t, testutil.BasicLedger())

	assert.True(t, m.ready)
	assert.Len(t, m.tables[ViewAccounts].Rows(), 2)
	assert.Len(t, m.tables[ViewTransactions].Rows(), 3)
	assert.Len(t, m.tables[ViewTypes].Rows(), 3)
	assert.Len(t, m.tables[ViewSchedules].Rows(), 1)

	// Newest opening date first.
	assert.Equal(t, "Savings", m.tables[ViewAccounts].Rows()[0][0])
	assert.Equal(t, []string{"2024-01-15", "Checking", "Groceries", "Milk", "4.50", ""},
		[]string(m.tables[ViewTransactions].Rows()[0]))
	assert.Equal(t, []string{"Rent", "Checking", "Housing", "monthly", "2024-03-01", "1200.00"},
		[]string(m.tables[ViewSchedules].Rows()[0]))
}

func TestModel_SwitchViews(t *testing.T) {
	m := loadedModel(t, testutil.BasicLedger())
	assert.Equal(t, ViewAccounts, m.view)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewTransactions, m.view)
	assert.True(t, m.tables[ViewTransactions].Focused())
	assert.False(t, m.tables[ViewAccounts].Focused())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, ViewSchedules, m.view)

	assert.Contains(t, m.View(), "Schedules (1)")
}

func TestModel_Refresh(t *testing.T) {
	m := loadedModel(t, testutil.Fixture{})
	assert.Contains(t, m.View(), "No accounts recorded yet.")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	m = next.(Model)
	assert.False(t, m.ready)

	_, ok := cmd().(dataLoadedMsg)
	assert.True(t, ok)
}

func TestModel_Quit(t *testing.T) {
	m := loadedModel(t, testutil.Fixture{})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.(Model).View())
}

func TestModel_LoadError(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.Fixture{})
	require.NoError(t, db.Storage.Close())

	cfg := defaultConfig()
	cfg.Storage = db.Storage
	m := newModel(cfg)

	m = update(t, m, m.Init()())
	require.Error(t, m.lastError)
	assert.Contains(t, m.View(), "Error: failed to load accounts")
}

func TestModel_NoStorage(t *testing.T) {
	m := newModel(defaultConfig())

	msg, ok := m.Init()().(dataLoadedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, msg.err, errNoStorage)
}

func TestModel_WindowResize(t *testing.T) {
	m := loadedModel(t, testutil.Fixture{})

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
	assert.Equal(t, 120, m.help.Width)
}

func TestViewCycle(t *testing.T) {
	assert.Equal(t, ViewTransactions, ViewAccounts.next())
	assert.Equal(t, ViewAccounts, ViewSchedules.next())
	assert.Equal(t, ViewSchedules, ViewAccounts.prev())
	assert.Equal(t, "Types", ViewTypes.String())
}
