package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus represents the administrative state of an account.
// Only ACTIVE accounts accept balance mutations.
type AccountStatus string

const (
	// AccountStatusActive allows deposits and withdrawals.
	AccountStatusActive AccountStatus = "ACTIVE"
	// AccountStatusInactive blocks all balance mutations.
	AccountStatusInactive AccountStatus = "INACTIVE"
	// AccountStatusBlocked blocks all balance mutations pending review.
	AccountStatusBlocked AccountStatus = "BLOCKED"
)

// Account is the aggregate owning the balance invariants: the balance is
// never negative and only mutates through Deposit and Withdraw.
type Account struct {
	ID            uuid.UUID
	AccountNumber string
	AccountName   string
	Balance       decimal.Decimal
	Status        AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewAccount creates an ACTIVE account with a time-ordered identifier and the
// given opening balance. The opening balance must be greater than zero.
func NewAccount(accountNumber, accountName string, initialBalance decimal.Decimal) (*Account, error) {
	if strings.TrimSpace(accountNumber) == "" {
		return nil, NewError(ErrorInvalidInput, "account number is required")
	}

	if !initialBalance.IsPositive() {
		return nil, NewError(ErrorInvalidInput, "initial balance must be greater than zero")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating account id: %w", err)
	}

	now := time.Now().UTC()

	return &Account{
		ID:            id,
		AccountNumber: accountNumber,
		AccountName:   accountName,
		Balance:       initialBalance,
		Status:        AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Deposit adds amount to the balance. Validation order is fixed: account
// status first, then amount sign. Callers rely on this order to map failures
// to the right error code.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if err := a.validateStatus(); err != nil {
		return err
	}

	if err := validateAmount(amount); err != nil {
		return err
	}

	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = time.Now().UTC()

	return nil
}

// Withdraw subtracts amount from the balance. Validation order is fixed:
// account status, then amount sign, then balance sufficiency.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if err := a.validateStatus(); err != nil {
		return err
	}

	if err := validateAmount(amount); err != nil {
		return err
	}

	if a.Balance.LessThan(amount) {
		return Errorf(ErrorInsufficientBalance, "insufficient balance: available %s, requested %s", a.Balance, amount)
	}

	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = time.Now().UTC()

	return nil
}

func (a *Account) validateStatus() error {
	if a.Status != AccountStatusActive {
		return Errorf(ErrorInactiveAccount, "account %s is not active", a.ID)
	}

	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewError(ErrorInvalidInput, "amount must be greater than zero")
	}

	return nil
}
