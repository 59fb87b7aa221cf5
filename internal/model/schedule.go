package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency describes how often a scheduled transaction recurs.
// It is stored as free text; the constants below are the values offered to users.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// KnownFrequencies lists the frequencies offered by the command line, in display order.
var KnownFrequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyBiweekly,
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencyYearly,
}

// NormalizeFrequency lower-cases and trims a user supplied frequency.
func NormalizeFrequency(s string) Frequency {
	return Frequency(strings.ToLower(strings.TrimSpace(s)))
}

// IsKnown reports whether f is one of KnownFrequencies.
func (f Frequency) IsKnown() bool {
	for _, k := range KnownFrequencies {
		if f == k {
			return true
		}
	}
	return false
}

// ScheduledTransaction is a stored definition of a recurring payment.
// Nothing in the application ever executes it.
type ScheduledTransaction struct {
	DueDate         time.Time
	ScheduleName    string
	AccountName     string
	TransactionType string
	Frequency       Frequency
	PaymentAmount   decimal.Decimal
}
