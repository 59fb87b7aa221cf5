package tui

import "github.com/Veraticus/checkbook/internal/model"

// dataLoadedMsg carries a full snapshot of the ledger, or the first error
// hit while reading it.
type dataLoadedMsg struct {
	err          error
	accounts     []model.Account
	types        []string
	transactions []model.Transaction
	schedules    []model.ScheduledTransaction
}
