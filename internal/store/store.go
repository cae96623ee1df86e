// Package store defines the persistence contracts for accounts and
// transactions, plus their implementations. Stores provide durable,
// read-your-writes single-row persistence; cross-row consistency is the
// caller's responsibility and is enforced by the distributed lock.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/silverhyuk/david-remittance-service/internal/domain"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// AccountStore persists accounts keyed by identifier and account number.
type AccountStore interface {
	Save(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	FindAll(ctx context.Context) ([]*domain.Account, error)
}

// TransactionStore persists transactions and supports the read-side queries.
type TransactionStore interface {
	Save(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	FindBySourceAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error)
	FindByTargetAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error)
	FindByType(ctx context.Context, transactionType domain.TransactionType) ([]*domain.Transaction, error)
	FindByStatus(ctx context.Context, status domain.TransactionStatus) ([]*domain.Transaction, error)
}
