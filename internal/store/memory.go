package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/silverhyuk/david-remittance-service/internal/domain"
)

// MemoryAccountStore is an in-memory AccountStore for tests and local runs.
//
// Thread-safe. Stored values are copied on save and load so callers never
// share aggregate instances through the store.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]domain.Account
}

// NewMemoryAccountStore creates an empty in-memory account store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[uuid.UUID]domain.Account)}
}

// Save upserts the account by identifier.
func (s *MemoryAccountStore) Save(_ context.Context, account *domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[account.ID] = *account
	saved := *account

	return &saved, nil
}

// FindByID returns the account or ErrNotFound.
func (s *MemoryAccountStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &account, nil
}

// FindByAccountNumber returns the account with the given number or ErrNotFound.
func (s *MemoryAccountStore) FindByAccountNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if account.AccountNumber == accountNumber {
			found := account
			return &found, nil
		}
	}

	return nil, ErrNotFound
}

// FindAll returns all stored accounts.
func (s *MemoryAccountStore) FindAll(_ context.Context) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(s.accounts))

	for _, account := range s.accounts {
		found := account
		accounts = append(accounts, &found)
	}

	return accounts, nil
}

// MemoryTransactionStore is an in-memory TransactionStore for tests and
// local runs. Thread-safe.
type MemoryTransactionStore struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]domain.Transaction
}

// NewMemoryTransactionStore creates an empty in-memory transaction store.
func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{transactions: make(map[uuid.UUID]domain.Transaction)}
}

// Save upserts the transaction by identifier.
func (s *MemoryTransactionStore) Save(_ context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions[transaction.ID] = *transaction
	saved := *transaction

	return &saved, nil
}

// FindByID returns the transaction or ErrNotFound.
func (s *MemoryTransactionStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transaction, ok := s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &transaction, nil
}

// FindBySourceAccountID returns all transactions debiting the account.
func (s *MemoryTransactionStore) FindBySourceAccountID(_ context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	return s.filter(func(t domain.Transaction) bool {
		return t.SourceAccountID != nil && *t.SourceAccountID == accountID
	}), nil
}

// FindByTargetAccountID returns all transactions crediting the account.
func (s *MemoryTransactionStore) FindByTargetAccountID(_ context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	return s.filter(func(t domain.Transaction) bool {
		return t.TargetAccountID != nil && *t.TargetAccountID == accountID
	}), nil
}

// FindByType returns all transactions of the given type.
func (s *MemoryTransactionStore) FindByType(_ context.Context, transactionType domain.TransactionType) ([]*domain.Transaction, error) {
	return s.filter(func(t domain.Transaction) bool {
		return t.Type == transactionType
	}), nil
}

// FindByStatus returns all transactions in the given lifecycle state.
func (s *MemoryTransactionStore) FindByStatus(_ context.Context, status domain.TransactionStatus) ([]*domain.Transaction, error) {
	return s.filter(func(t domain.Transaction) bool {
		return t.Status == status
	}), nil
}

func (s *MemoryTransactionStore) filter(match func(domain.Transaction) bool) []*domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := make([]*domain.Transaction, 0)

	for _, transaction := range s.transactions {
		if match(transaction) {
			found := transaction
			transactions = append(transactions, &found)
		}
	}

	return transactions
}
