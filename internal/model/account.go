package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a named money-holding entity with a fixed opening date and balance.
type Account struct {
	OpeningDate    time.Time
	Name           string
	OpeningBalance decimal.Decimal
}
