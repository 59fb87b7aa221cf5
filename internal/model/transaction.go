package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single dated movement of money against one account.
// AccountName and TransactionType refer to other records by name only.
type Transaction struct {
	Date            time.Time
	AccountName     string
	TransactionType string
	Description     string          // Optional
	PaymentAmount   decimal.Decimal // Debit; zero when unset
	DepositAmount   decimal.Decimal // Credit; zero when unset
}
