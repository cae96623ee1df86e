package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/silverhyuk/david-remittance-service/internal/domain"
	"github.com/silverhyuk/david-remittance-service/internal/lock"
	"github.com/silverhyuk/david-remittance-service/internal/store"
	"github.com/silverhyuk/david-remittance-service/pkg/log"
)

// AccountService owns the account commands and queries. Every command runs
// its full load-mutate-save sequence inside a distributed lock scoped to the
// operation and its account, so concurrent commands on the same account
// serialize across all service instances.
type AccountService struct {
	accounts store.AccountStore
	locks    *lock.Manager
	logger   log.Logger
}

// NewAccountService wires the account service.
func NewAccountService(accounts store.AccountStore, locks *lock.Manager, logger log.Logger) *AccountService {
	if logger == nil {
		logger = log.NewNop()
	}

	return &AccountService{
		accounts: accounts,
		locks:    locks,
		logger:   logger,
	}
}

// CreateAccount creates an ACTIVE account with the given opening balance
// under a lock scoped to the account number, so two concurrent creates with
// the same number cannot both pass the uniqueness check.
func (s *AccountService) CreateAccount(ctx context.Context, accountNumber, accountName string, initialBalance decimal.Decimal) (uuid.UUID, error) {
	var accountID uuid.UUID

	key := lock.Key("create-account", accountNumber)

	err := s.locks.WithLock(ctx, key, lock.DefaultOptions(), func(ctx context.Context) error {
		s.logger.Log(ctx, log.LevelDebug, "creating account", log.String("account_number", accountNumber))

		_, err := s.accounts.FindByAccountNumber(ctx, accountNumber)
		if err == nil {
			return domain.Errorf(domain.ErrorDuplicateAccountNumber, "account number already exists: %s", accountNumber)
		}

		if !errors.Is(err, store.ErrNotFound) {
			return domain.WrapError(domain.ErrorInternal, "checking account number uniqueness failed", err)
		}

		account, err := domain.NewAccount(accountNumber, accountName, initialBalance)
		if err != nil {
			return err
		}

		saved, err := s.accounts.Save(ctx, account)
		if err != nil {
			return domain.WrapError(domain.ErrorInternal, "saving new account failed", err)
		}

		accountID = saved.ID

		s.logger.Log(ctx, log.LevelInfo, "account created",
			log.String("account_id", saved.ID.String()),
			log.String("account_number", saved.AccountNumber))

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return accountID, nil
}

// Deposit credits the account under a lock scoped to the account identifier.
func (s *AccountService) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (uuid.UUID, error) {
	return s.mutate(ctx, "deposit", accountID, amount, (*domain.Account).Deposit)
}

// Withdraw debits the account under a lock scoped to the account identifier.
func (s *AccountService) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (uuid.UUID, error) {
	return s.mutate(ctx, "withdraw", accountID, amount, (*domain.Account).Withdraw)
}

// mutate runs a single-account balance mutation under the operation's lock.
// The load-mutate-save sequence happens entirely inside the lock, which is
// what rules out lost updates between concurrent commands on one account.
func (s *AccountService) mutate(ctx context.Context, operation string, accountID uuid.UUID, amount decimal.Decimal, apply func(*domain.Account, decimal.Decimal) error) (uuid.UUID, error) {
	key := lock.Key(operation, accountID.String())

	err := s.locks.WithLock(ctx, key, lock.DefaultOptions(), func(ctx context.Context) error {
		s.logger.Log(ctx, log.LevelDebug, "processing "+operation,
			log.String("account_id", accountID.String()),
			log.String("amount", amount.String()))

		account, err := s.loadAccount(ctx, accountID)
		if err != nil {
			return err
		}

		if err := apply(account, amount); err != nil {
			return err
		}

		saved, err := s.accounts.Save(ctx, account)
		if err != nil {
			return domain.WrapError(domain.ErrorInternal, "saving account failed", err)
		}

		s.logger.Log(ctx, log.LevelInfo, operation+" completed",
			log.String("account_id", saved.ID.String()),
			log.String("amount", amount.String()),
			log.String("balance", saved.Balance.String()))

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return accountID, nil
}

// GetAccount returns one account by identifier.
func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	return s.loadAccount(ctx, accountID)
}

// ListAccounts returns all accounts.
func (s *AccountService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.accounts.FindAll(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorInternal, "listing accounts failed", err)
	}

	return accounts, nil
}

func (s *AccountService) loadAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.Errorf(domain.ErrorAccountNotFound, "account not found: %s", accountID)
	}

	if err != nil {
		return nil, domain.WrapError(domain.ErrorInternal, "loading account failed", err)
	}

	return account, nil
}
