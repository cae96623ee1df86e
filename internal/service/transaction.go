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

// TransactionService owns the transfer workflow and the transaction queries.
type TransactionService struct {
	transactions store.TransactionStore
	accounts     store.AccountStore
	locks        *lock.Manager
	logger       log.Logger
}

// NewTransactionService wires the transaction service.
func NewTransactionService(transactions store.TransactionStore, accounts store.AccountStore, locks *lock.Manager, logger log.Logger) *TransactionService {
	if logger == nil {
		logger = log.NewNop()
	}

	return &TransactionService{
		transactions: transactions,
		accounts:     accounts,
		locks:        locks,
		logger:       logger,
	}
}

// Transfer moves amount from the source account to the target account and
// returns the identifier of the transaction recording the movement.
//
// The whole workflow runs under one lock covering the account pair (the key
// orders the pair canonically, so opposite-direction transfers contend on the
// same key). Steps are strictly ordered: the PENDING transaction is persisted
// first, then the source is debited, then the target is credited, then the
// transaction is finalized. A failure after the debit has been saved leaves
// the debit in place: the transaction is marked FAILED with the reason and
// the funds are NOT credited back. Reconciling such transfers is an
// operational procedure, not an automatic one.
func (s *TransactionService) Transfer(ctx context.Context, sourceAccountID, targetAccountID uuid.UUID, amount decimal.Decimal, description string) (uuid.UUID, error) {
	var transactionID uuid.UUID

	key := lock.PairKey("transfer", sourceAccountID.String(), targetAccountID.String())

	err := s.locks.WithLock(ctx, key, lock.TransferOptions(), func(ctx context.Context) error {
		s.logger.Log(ctx, log.LevelDebug, "processing transfer",
			log.String("source_account_id", sourceAccountID.String()),
			log.String("target_account_id", targetAccountID.String()),
			log.String("amount", amount.String()))

		if sourceAccountID == targetAccountID {
			return domain.NewError(domain.ErrorSameAccountTransfer, "transfer between the same account is not allowed")
		}

		source, err := s.accounts.FindByID(ctx, sourceAccountID)
		if errors.Is(err, store.ErrNotFound) {
			return domain.Errorf(domain.ErrorAccountNotFound, "source account not found: %s", sourceAccountID)
		}

		if err != nil {
			return domain.WrapError(domain.ErrorInternal, "loading source account failed", err)
		}

		target, err := s.accounts.FindByID(ctx, targetAccountID)
		if errors.Is(err, store.ErrNotFound) {
			return domain.Errorf(domain.ErrorAccountNotFound, "target account not found: %s", targetAccountID)
		}

		if err != nil {
			return domain.WrapError(domain.ErrorInternal, "loading target account failed", err)
		}

		transaction, err := domain.NewTransfer(sourceAccountID, targetAccountID, amount, description)
		if err != nil {
			return err
		}

		transaction, err = s.transactions.Save(ctx, transaction)
		if err != nil {
			return domain.WrapError(domain.ErrorInternal, "saving pending transaction failed", err)
		}

		s.logger.Log(ctx, log.LevelDebug, "transaction created",
			log.String("transaction_id", transaction.ID.String()))

		if err := s.debitSource(ctx, source, amount); err != nil {
			return s.failTransfer(ctx, transaction, err)
		}

		if err := s.creditTarget(ctx, target, amount); err != nil {
			return s.failTransfer(ctx, transaction, err)
		}

		if err := transaction.Complete(); err != nil {
			return s.failTransfer(ctx, transaction, err)
		}

		transaction, err = s.transactions.Save(ctx, transaction)
		if err != nil {
			// The balances moved but the record still reads PENDING. Surface
			// loudly; the record cannot be failed anymore without lying about
			// the funds.
			s.logger.Log(ctx, log.LevelError, "saving completed transaction failed",
				log.String("transaction_id", transaction.ID.String()), log.Err(err))

			return domain.WrapError(domain.ErrorTransferFailed, "finalizing transfer failed", err)
		}

		transactionID = transaction.ID

		s.logger.Log(ctx, log.LevelInfo, "transfer completed",
			log.String("transaction_id", transaction.ID.String()),
			log.String("source_account_id", sourceAccountID.String()),
			log.String("target_account_id", targetAccountID.String()),
			log.String("amount", amount.String()))

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return transactionID, nil
}

// debitSource withdraws from the source account and persists it.
func (s *TransactionService) debitSource(ctx context.Context, source *domain.Account, amount decimal.Decimal) error {
	if err := source.Withdraw(amount); err != nil {
		return err
	}

	if _, err := s.accounts.Save(ctx, source); err != nil {
		return domain.WrapError(domain.ErrorTransferFailed, "saving debited source account failed", err)
	}

	s.logger.Log(ctx, log.LevelDebug, "source debited",
		log.String("account_id", source.ID.String()),
		log.String("amount", amount.String()))

	return nil
}

// creditTarget deposits into the target account and persists it.
func (s *TransactionService) creditTarget(ctx context.Context, target *domain.Account, amount decimal.Decimal) error {
	if err := target.Deposit(amount); err != nil {
		return err
	}

	if _, err := s.accounts.Save(ctx, target); err != nil {
		return domain.WrapError(domain.ErrorTransferFailed, "saving credited target account failed", err)
	}

	s.logger.Log(ctx, log.LevelDebug, "target credited",
		log.String("account_id", target.ID.String()),
		log.String("amount", amount.String()))

	return nil
}

// failTransfer marks the already-persisted pending transaction FAILED with
// the cause and re-raises the cause to the caller. Balance mutations that
// already committed are deliberately left alone.
func (s *TransactionService) failTransfer(ctx context.Context, transaction *domain.Transaction, cause error) error {
	var domainErr domain.Error
	if !errors.As(cause, &domainErr) {
		cause = domain.WrapError(domain.ErrorTransferFailed, "unexpected failure during transfer", cause)
	}

	if err := transaction.Fail(cause.Error()); err != nil {
		s.logger.Log(ctx, log.LevelError, "marking transaction failed was rejected",
			log.String("transaction_id", transaction.ID.String()), log.Err(err))

		return cause
	}

	if _, err := s.transactions.Save(ctx, transaction); err != nil {
		s.logger.Log(ctx, log.LevelError, "saving failed transaction failed",
			log.String("transaction_id", transaction.ID.String()), log.Err(err))
	}

	s.logger.Log(ctx, log.LevelError, "transfer failed",
		log.String("transaction_id", transaction.ID.String()),
		log.Err(cause))

	return cause
}

// GetTransaction returns one transaction by identifier.
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	transaction, err := s.transactions.FindByID(ctx, transactionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.Errorf(domain.ErrorTransactionNotFound, "transaction not found: %s", transactionID)
	}

	if err != nil {
		return nil, domain.WrapError(domain.ErrorInternal, "loading transaction failed", err)
	}

	return transaction, nil
}

// ListBySourceAccount returns transactions debiting the account.
func (s *TransactionService) ListBySourceAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	transactions, err := s.transactions.FindBySourceAccountID(ctx, accountID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorInternal, "listing transactions by source account failed", err)
	}

	return transactions, nil
}

// ListByTargetAccount returns transactions crediting the account.
func (s *TransactionService) ListByTargetAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	transactions, err := s.transactions.FindByTargetAccountID(ctx, accountID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorInternal, "listing transactions by target account failed", err)
	}

	return transactions, nil
}

// ListByType returns transactions of the given type.
func (s *TransactionService) ListByType(ctx context.Context, transactionType domain.TransactionType) ([]*domain.Transaction, error) {
	transactions, err := s.transactions.FindByType(ctx, transactionType)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorInternal, "listing transactions by type failed", err)
	}

	return transactions, nil
}

// ListByStatus returns transactions in the given lifecycle state.
func (s *TransactionService) ListByStatus(ctx context.Context, status domain.TransactionStatus) ([]*domain.Transaction, error) {
	transactions, err := s.transactions.FindByStatus(ctx, status)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorInternal, "listing transactions by status failed", err)
	}

	return transactions, nil
}
