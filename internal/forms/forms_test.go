package forms

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/model"
)

func TestAccountForm_Validate(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		wantMsg string
		form    AccountForm
	}{
		{
			name: "valid",
			form: AccountForm{Name: " Checking ", OpeningDate: "2024-01-15", OpeningBalance: "1,500.25"},
		},
		{
			name:    "blank name",
			form:    AccountForm{Name: "  ", OpeningDate: "2024-01-15", OpeningBalance: "1"},
			wantErr: ErrMissingField,
			wantMsg: "Please fill in all fields.",
		},
		{
			name:    "blank balance",
			form:    AccountForm{Name: "Checking", OpeningDate: "2024-01-15"},
			wantErr: ErrMissingField,
			wantMsg: "Please fill in all fields.",
		},
		{
			name:    "bad balance",
			form:    AccountForm{Name: "Checking", OpeningDate: "2024-01-15", OpeningBalance: "lots"},
			wantErr: ErrInvalidAmount,
			wantMsg: "Please enter a valid opening balance.",
		},
		{
			name:    "bad date",
			form:    AccountForm{Name: "Checking", OpeningDate: "15/01/2024", OpeningBalance: "1"},
			wantErr: ErrInvalidDate,
			wantMsg: "Please enter the opening date as YYYY-MM-DD.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := tt.form.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantMsg, common.UserMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Checking", acct.Name)
			assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), acct.OpeningDate)
			assert.True(t, decimal.RequireFromString("1500.25").Equal(acct.OpeningBalance))
		})
	}
}

func TestAccountForm_NegativeOpeningBalance(t *testing.T) {
	acct, err := AccountForm{Name: "Card", OpeningDate: "2024-01-01", OpeningBalance: "-250"}.Validate()
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-250).Equal(acct.OpeningBalance))
}

func TestTransactionTypeForm_Validate(t *testing.T) {
	tt, err := TransactionTypeForm{Name: "  Groceries "}.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Groceries", tt.Name)

	_, err = TransactionTypeForm{Name: "   "}.Validate()
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Equal(t, "Transaction type name cannot be empty.", common.UserMessage(err))
}

func TestTransactionForm_Validate(t *testing.T) {
	valid := TransactionForm{
		AccountName:     "Checking",
		TransactionType: "Groceries",
		Date:            "2024-01-15",
		Description:     "Milk",
		Payment:         "4.50",
	}

	t.Run("payment only", func(t *testing.T) {
		txn, err := valid.Validate()
		require.NoError(t, err)
		assert.Equal(t, model.Transaction{
			AccountName:     "Checking",
			TransactionType: "Groceries",
			Date:            time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Description:     "Milk",
			PaymentAmount:   txn.PaymentAmount,
			DepositAmount:   txn.DepositAmount,
		}, txn)
		assert.True(t, decimal.RequireFromString("4.5").Equal(txn.PaymentAmount))
		assert.True(t, txn.DepositAmount.IsZero())
	})

	t.Run("deposit only", func(t *testing.T) {
		form := valid
		form.Payment = ""
		form.Deposit = "$2,000"
		txn, err := form.Validate()
		require.NoError(t, err)
		assert.True(t, txn.PaymentAmount.IsZero())
		assert.True(t, decimal.NewFromInt(2000).Equal(txn.DepositAmount))
	})

	failures := []struct {
		mutate  func(*TransactionForm)
		wantErr error
		name    string
		wantMsg string
	}{
		{
			name:    "missing description",
			mutate:  func(f *TransactionForm) { f.Description = "" },
			wantErr: ErrMissingField,
			wantMsg: "Please fill in all required fields.",
		},
		{
			name:    "missing account",
			mutate:  func(f *TransactionForm) { f.AccountName = " " },
			wantErr: ErrMissingField,
			wantMsg: "Please fill in all required fields.",
		},
		{
			name:    "no amounts",
			mutate:  func(f *TransactionForm) { f.Payment = "" },
			wantErr: ErrMissingField,
			wantMsg: "Please enter either a payment or deposit amount.",
		},
		{
			name:    "bad deposit",
			mutate:  func(f *TransactionForm) { f.Deposit = "ten" },
			wantErr: ErrInvalidAmount,
			wantMsg: "Please enter valid numbers for amounts.",
		},
		{
			name:    "negative payment",
			mutate:  func(f *TransactionForm) { f.Payment = "-3" },
			wantErr: ErrNegativeAmount,
			wantMsg: "Amounts cannot be negative.",
		},
		{
			name:    "bad date",
			mutate:  func(f *TransactionForm) { f.Date = "yesterday" },
			wantErr: ErrInvalidDate,
			wantMsg: "Please enter the transaction date as YYYY-MM-DD.",
		},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			_, err := form.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMsg, common.UserMessage(err))
		})
	}
}

func TestScheduleForm_Validate(t *testing.T) {
	form := ScheduleForm{
		ScheduleName:    "Rent",
		AccountName:     "Checking",
		TransactionType: "Housing",
		Frequency:       " Monthly",
		DueDate:         "2024-02-01",
		Amount:          "1200.00",
	}

	st, err := form.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Rent", st.ScheduleName)
	assert.Equal(t, model.FrequencyMonthly, st.Frequency)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), st.DueDate)
	assert.True(t, decimal.NewFromInt(1200).Equal(st.PaymentAmount))

	missing := form
	missing.Frequency = ""
	_, err = missing.Validate()
	assert.ErrorIs(t, err, ErrMissingField)

	badAmount := form
	badAmount.Amount = "1.2.3"
	_, err = badAmount.Validate()
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, "Please enter a valid payment amount.", common.UserMessage(err))

	negative := form
	negative.Amount = "-1200"
	_, err = negative.Validate()
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "4.50", want: "4.5"},
		{in: " 12 ", want: "12"},
		{in: "$1,200.00", want: "1200"},
		{in: "-$5.25", want: "-5.25"},
		{in: "", wantErr: true},
		{in: "$", wantErr: true},
		{in: "--5", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}
