package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActiveAccount(t *testing.T, balance string) *Account {
	t.Helper()

	account, err := NewAccount("1234567890", "checking", decimal.RequireFromString(balance))
	require.NoError(t, err)

	return account
}

func TestNewAccount(t *testing.T) {
	t.Run("creates active account with opening balance", func(t *testing.T) {
		account, err := NewAccount("1234567890", "checking", decimal.NewFromInt(1000))
		require.NoError(t, err)

		assert.Equal(t, AccountStatusActive, account.Status)
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(1000)))
		assert.NotEqual(t, account.ID.String(), "00000000-0000-0000-0000-000000000000")
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("identifiers are time-ordered", func(t *testing.T) {
		first, err := NewAccount("1111111111", "a", decimal.NewFromInt(1))
		require.NoError(t, err)

		second, err := NewAccount("2222222222", "b", decimal.NewFromInt(1))
		require.NoError(t, err)

		assert.Less(t, first.ID.String(), second.ID.String())
	})

	t.Run("rejects non-positive opening balance", func(t *testing.T) {
		_, err := NewAccount("1234567890", "checking", decimal.Zero)
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrorInvalidInput))
	})

	t.Run("rejects empty account number", func(t *testing.T) {
		_, err := NewAccount("  ", "checking", decimal.NewFromInt(100))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrorInvalidInput))
	})
}

func TestAccount_Deposit(t *testing.T) {
	tests := []struct {
		name      string
		status    AccountStatus
		balance   string
		amount    string
		errorCode ErrorCode
		want      string
	}{
		{name: "adds amount to balance", status: AccountStatusActive, balance: "1000", amount: "500", want: "1500"},
		{name: "fractional amounts keep precision", status: AccountStatusActive, balance: "0.10", amount: "0.20", want: "0.30"},
		{name: "rejects zero amount", status: AccountStatusActive, balance: "1000", amount: "0", errorCode: ErrorInvalidInput},
		{name: "rejects negative amount", status: AccountStatusActive, balance: "1000", amount: "-1", errorCode: ErrorInvalidInput},
		{name: "rejects inactive account", status: AccountStatusInactive, balance: "1000", amount: "500", errorCode: ErrorInactiveAccount},
		{name: "rejects blocked account", status: AccountStatusBlocked, balance: "1000", amount: "500", errorCode: ErrorInactiveAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := newActiveAccount(t, tt.balance)
			account.Status = tt.status

			err := account.Deposit(decimal.RequireFromString(tt.amount))

			if tt.errorCode != "" {
				require.Error(t, err)
				assert.True(t, IsCode(err, tt.errorCode), "got %v", err)
				assert.True(t, account.Balance.Equal(decimal.RequireFromString(tt.balance)), "balance must not change on failure")

				return
			}

			require.NoError(t, err)
			assert.True(t, account.Balance.Equal(decimal.RequireFromString(tt.want)),
				"balance = %s, want %s", account.Balance, tt.want)
		})
	}
}

func TestAccount_Withdraw(t *testing.T) {
	tests := []struct {
		name      string
		status    AccountStatus
		balance   string
		amount    string
		errorCode ErrorCode
		want      string
	}{
		{name: "subtracts amount from balance", status: AccountStatusActive, balance: "1000", amount: "400", want: "600"},
		{name: "allows withdrawing the full balance", status: AccountStatusActive, balance: "1000", amount: "1000", want: "0"},
		{name: "rejects amount above balance", status: AccountStatusActive, balance: "1000", amount: "1500", errorCode: ErrorInsufficientBalance},
		{name: "rejects zero amount", status: AccountStatusActive, balance: "1000", amount: "0", errorCode: ErrorInvalidInput},
		{name: "rejects negative amount", status: AccountStatusActive, balance: "1000", amount: "-5", errorCode: ErrorInvalidInput},
		{name: "rejects inactive account", status: AccountStatusInactive, balance: "1000", amount: "100", errorCode: ErrorInactiveAccount},
		{name: "status check precedes balance check", status: AccountStatusBlocked, balance: "10", amount: "100", errorCode: ErrorInactiveAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := newActiveAccount(t, tt.balance)
			account.Status = tt.status

			err := account.Withdraw(decimal.RequireFromString(tt.amount))

			if tt.errorCode != "" {
				require.Error(t, err)
				assert.True(t, IsCode(err, tt.errorCode), "got %v", err)
				assert.True(t, account.Balance.Equal(decimal.RequireFromString(tt.balance)), "balance must not change on failure")

				return
			}

			require.NoError(t, err)
			assert.True(t, account.Balance.Equal(decimal.RequireFromString(tt.want)),
				"balance = %s, want %s", account.Balance, tt.want)
		})
	}
}

func TestAccount_BalanceEquation(t *testing.T) {
	account := newActiveAccount(t, "100")

	deposits := []string{"50", "25.50", "0.01"}
	withdrawals := []string{"30", "10.25"}

	expected := decimal.RequireFromString("100")

	for _, amount := range deposits {
		require.NoError(t, account.Deposit(decimal.RequireFromString(amount)))

		expected = expected.Add(decimal.RequireFromString(amount))
	}

	for _, amount := range withdrawals {
		require.NoError(t, account.Withdraw(decimal.RequireFromString(amount)))

		expected = expected.Sub(decimal.RequireFromString(amount))
	}

	assert.True(t, account.Balance.Equal(expected), "balance = %s, want %s", account.Balance, expected)
	assert.False(t, account.Balance.IsNegative())
}
