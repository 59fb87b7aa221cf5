package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

var errNoStorage = errors.New("storage not configured")

// loadData reads every entity kind from storage.
func (m Model) loadData() tea.Cmd {
	store := m.storage
	timeout := m.config.LoadTimeout

	return func() tea.Msg {
		if store == nil {
			return dataLoadedMsg{err: errNoStorage}
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var msg dataLoadedMsg
		var err error

		if msg.accounts, err = store.GetAllAccountDetails(ctx); err != nil {
			return dataLoadedMsg{err: fmt.Errorf("failed to load accounts: %w", err)}
		}
		if msg.transactions, err = store.GetTransactions(ctx); err != nil {
			return dataLoadedMsg{err: fmt.Errorf("failed to load transactions: %w", err)}
		}
		if msg.types, err = store.GetAllTransactionTypes(ctx); err != nil {
			return dataLoadedMsg{err: fmt.Errorf("failed to load transaction types: %w", err)}
		}
		if msg.schedules, err = store.GetScheduledTransactions(ctx); err != nil {
			return dataLoadedMsg{err: fmt.Errorf("failed to load scheduled transactions: %w", err)}
		}
		return msg
	}
}
