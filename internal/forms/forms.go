// Package forms validates user input before it reaches the store. Each form
// holds raw text as typed by the user; Validate either returns the domain
// value to persist or a common.UserError explaining what to fix.
package forms

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/model"
)

// Validation errors wrapped by the user-facing messages.
var (
	ErrMissingField   = errors.New("required field is blank")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("negative amount")
	ErrInvalidDate    = errors.New("invalid date")
)

// AccountForm is the raw input for a new account.
type AccountForm struct {
	Name           string
	OpeningDate    string
	OpeningBalance string
}

// Validate checks that every field is filled in and parses the date and balance.
func (f AccountForm) Validate() (model.Account, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" || blank(f.OpeningDate) || blank(f.OpeningBalance) {
		return model.Account{}, common.NewUserError("Please fill in all fields.", ErrMissingField)
	}

	opened, err := model.ParseDate(f.OpeningDate)
	if err != nil {
		return model.Account{}, common.NewUserError("Please enter the opening date as YYYY-MM-DD.", errors.Join(ErrInvalidDate, err))
	}

	balance, err := ParseAmount(f.OpeningBalance)
	if err != nil {
		return model.Account{}, common.NewUserError("Please enter a valid opening balance.", err)
	}

	return model.Account{
		Name:           name,
		OpeningDate:    opened,
		OpeningBalance: balance,
	}, nil
}

// TransactionTypeForm is the raw input for a new transaction type.
type TransactionTypeForm struct {
	Name string
}

// Validate returns the trimmed type name.
func (f TransactionTypeForm) Validate() (model.TransactionType, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return model.TransactionType{}, common.NewUserError("Transaction type name cannot be empty.", ErrMissingField)
	}
	return model.TransactionType{Name: name}, nil
}

// TransactionForm is the raw input for a new transaction.
type TransactionForm struct {
	AccountName     string
	TransactionType string
	Date            string
	Description     string
	Payment         string
	Deposit         string
}

// Validate requires account, type, date and description plus at least one of
// payment or deposit. A blank amount is stored as zero.
func (f TransactionForm) Validate() (model.Transaction, error) {
	if blank(f.AccountName) || blank(f.TransactionType) || blank(f.Date) || blank(f.Description) {
		return model.Transaction{}, common.NewUserError("Please fill in all required fields.", ErrMissingField)
	}
	if blank(f.Payment) && blank(f.Deposit) {
		return model.Transaction{}, common.NewUserError("Please enter either a payment or deposit amount.", ErrMissingField)
	}

	date, err := model.ParseDate(f.Date)
	if err != nil {
		return model.Transaction{}, common.NewUserError("Please enter the transaction date as YYYY-MM-DD.", errors.Join(ErrInvalidDate, err))
	}

	payment, err := optionalAmount(f.Payment)
	if err != nil {
		return model.Transaction{}, common.NewUserError("Please enter valid numbers for amounts.", err)
	}
	deposit, err := optionalAmount(f.Deposit)
	if err != nil {
		return model.Transaction{}, common.NewUserError("Please enter valid numbers for amounts.", err)
	}
	if payment.IsNegative() || deposit.IsNegative() {
		return model.Transaction{}, common.NewUserError("Amounts cannot be negative.", ErrNegativeAmount)
	}

	return model.Transaction{
		AccountName:     strings.TrimSpace(f.AccountName),
		TransactionType: strings.TrimSpace(f.TransactionType),
		Date:            date,
		Description:     strings.TrimSpace(f.Description),
		PaymentAmount:   payment,
		DepositAmount:   deposit,
	}, nil
}

// ScheduleForm is the raw input for a new scheduled transaction.
type ScheduleForm struct {
	ScheduleName    string
	AccountName     string
	TransactionType string
	Frequency       string
	DueDate         string
	Amount          string
}

// Validate requires every field. Frequencies are lower-cased; values outside
// model.KnownFrequencies are accepted as free text.
func (f ScheduleForm) Validate() (model.ScheduledTransaction, error) {
	if blank(f.ScheduleName) || blank(f.AccountName) || blank(f.TransactionType) ||
		blank(f.Frequency) || blank(f.DueDate) || blank(f.Amount) {
		return model.ScheduledTransaction{}, common.NewUserError("Please fill in all required fields.", ErrMissingField)
	}

	due, err := model.ParseDate(f.DueDate)
	if err != nil {
		return model.ScheduledTransaction{}, common.NewUserError("Please enter the due date as YYYY-MM-DD.", errors.Join(ErrInvalidDate, err))
	}

	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return model.ScheduledTransaction{}, common.NewUserError("Please enter a valid payment amount.", err)
	}
	if amount.IsNegative() {
		return model.ScheduledTransaction{}, common.NewUserError("Amounts cannot be negative.", ErrNegativeAmount)
	}

	return model.ScheduledTransaction{
		ScheduleName:    strings.TrimSpace(f.ScheduleName),
		AccountName:     strings.TrimSpace(f.AccountName),
		TransactionType: strings.TrimSpace(f.TransactionType),
		Frequency:       model.NormalizeFrequency(f.Frequency),
		DueDate:         due,
		PaymentAmount:   amount,
	}, nil
}

// ParseAmount parses a decimal amount. A leading currency sign and thousands
// separators are tolerated: "$1,200.50" parses as 1200.50.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	negative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimPrefix(cleaned, "-")
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	d, err := decimal.NewFromString(cleaned)
	if err != nil || cleaned == "" || strings.HasPrefix(cleaned, "-") {
		return decimal.Zero, errors.Join(ErrInvalidAmount, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

func optionalAmount(s string) (decimal.Decimal, error) {
	if blank(s) {
		return decimal.Zero, nil
	}
	return ParseAmount(s)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
