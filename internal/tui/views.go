package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/checkbook/internal/model"
)

// View is one of the browser's tabs.
type View int

const (
	ViewAccounts View = iota
	ViewTransactions
	ViewTypes
	ViewSchedules
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewAccounts:
		return "Accounts"
	case ViewTransactions:
		return "Transactions"
	case ViewTypes:
		return "Types"
	case ViewSchedules:
		return "Schedules"
	default:
		return "Unknown"
	}
}

func (v View) next() View {
	return (v + 1) % viewCount
}

func (v View) prev() View {
	return (v + viewCount - 1) % viewCount
}

func columnsFor(v View) []table.Column {
	switch v {
	case ViewAccounts:
		return []table.Column{
			{Title: "Name", Width: 24},
			{Title: "Opened", Width: 12},
			{Title: "Opening Balance", Width: 16},
		}
	case ViewTransactions:
		return []table.Column{
			{Title: "Date", Width: 12},
			{Title: "Account", Width: 16},
			{Title: "Type", Width: 16},
			{Title: "Description", Width: 24},
			{Title: "Payment", Width: 12},
			{Title: "Deposit", Width: 12},
		}
	case ViewTypes:
		return []table.Column{
			{Title: "Transaction Type", Width: 32},
		}
	case ViewSchedules:
		return []table.Column{
			{Title: "Schedule", Width: 16},
			{Title: "Account", Width: 16},
			{Title: "Type", Width: 16},
			{Title: "Frequency", Width: 12},
			{Title: "Due", Width: 12},
			{Title: "Amount", Width: 12},
		}
	}
	return nil
}

func accountRows(accounts []model.Account) []table.Row {
	rows := make([]table.Row, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, table.Row{a.Name, model.FormatDate(a.OpeningDate), money(a.OpeningBalance)})
	}
	return rows
}

func transactionRows(txns []model.Transaction) []table.Row {
	rows := make([]table.Row, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, table.Row{
			model.FormatDate(t.Date),
			t.AccountName,
			t.TransactionType,
			t.Description,
			optionalMoney(t.PaymentAmount),
			optionalMoney(t.DepositAmount),
		})
	}
	return rows
}

func typeRows(types []string) []table.Row {
	rows := make([]table.Row, 0, len(types))
	for _, name := range types {
		rows = append(rows, table.Row{name})
	}
	return rows
}

func scheduleRows(schedules []model.ScheduledTransaction) []table.Row {
	rows := make([]table.Row, 0, len(schedules))
	for _, s := range schedules {
		rows = append(rows, table.Row{
			s.ScheduleName,
			s.AccountName,
			s.TransactionType,
			string(s.Frequency),
			model.FormatDate(s.DueDate),
			money(s.PaymentAmount),
		})
	}
	return rows
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return money(d)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for v := ViewAccounts; v < viewCount; v++ {
		label := fmt.Sprintf("%s (%d)", v, len(m.tables[v].Rows()))
		if v == m.view {
			tabs = append(tabs, m.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.theme.TabInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatus() string {
	switch {
	case m.lastError != nil:
		return m.theme.StatusError.Render("Error: " + m.lastError.Error())
	case !m.ready:
		return m.theme.StatusInfo.Render("Loading…")
	case len(m.tables[m.view].Rows()) == 0:
		return m.theme.StatusInfo.Render("No " + strings.ToLower(m.view.String()) + " recorded yet.")
	}
	return ""
}
