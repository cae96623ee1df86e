package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a funds movement.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

// TransactionStatus is the lifecycle state of a transaction.
//
// Transitions:
//
//	PENDING → COMPLETED
//	PENDING → FAILED
//
// Both transitions are terminal; anything else is rejected.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction records one funds movement. It references accounts by
// identifier only; loading and saving the accounts is the orchestrator's
// responsibility. Amount, account references and type are immutable after
// construction.
type Transaction struct {
	ID              uuid.UUID
	SourceAccountID *uuid.UUID
	TargetAccountID *uuid.UUID
	Amount          decimal.Decimal
	Type            TransactionType
	Status          TransactionStatus
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTransfer creates a PENDING transfer transaction referencing both accounts.
func NewTransfer(sourceAccountID, targetAccountID uuid.UUID, amount decimal.Decimal, description string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, NewError(ErrorInvalidInput, "amount must be greater than zero")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating transaction id: %w", err)
	}

	now := time.Now().UTC()

	return &Transaction{
		ID:              id,
		SourceAccountID: &sourceAccountID,
		TargetAccountID: &targetAccountID,
		Amount:          amount,
		Type:            TransactionTypeTransfer,
		Status:          TransactionStatusPending,
		Description:     description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Complete marks a pending transaction as COMPLETED.
func (t *Transaction) Complete() error {
	if t.Status != TransactionStatusPending {
		return Errorf(ErrorInvalidTransactionState, "only pending transactions can be completed, current status: %s", t.Status)
	}

	t.Status = TransactionStatusCompleted
	t.UpdatedAt = time.Now().UTC()

	return nil
}

// Fail marks a pending transaction as FAILED and overwrites the description
// with the failure reason.
func (t *Transaction) Fail(reason string) error {
	if t.Status != TransactionStatusPending {
		return Errorf(ErrorInvalidTransactionState, "only pending transactions can be failed, current status: %s", t.Status)
	}

	t.Status = TransactionStatusFailed
	t.Description = reason
	t.UpdatedAt = time.Now().UTC()

	return nil
}
