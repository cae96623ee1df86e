package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silverhyuk/david-remittance-service/internal/domain"
	"github.com/silverhyuk/david-remittance-service/internal/lock"
	"github.com/silverhyuk/david-remittance-service/internal/redis"
	"github.com/silverhyuk/david-remittance-service/internal/service"
	"github.com/silverhyuk/david-remittance-service/internal/store"
	"github.com/silverhyuk/david-remittance-service/pkg/log"
)

func newLockManager(t *testing.T) *lock.Manager {
	t.Helper()

	mr := miniredis.RunT(t)

	conn, err := redis.NewConnection(redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mgr, err := lock.NewManager(context.Background(), conn, log.NewNop())
	require.NoError(t, err)

	return mgr
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(value)
	require.NoError(t, err)

	return d
}

func newAccountService(t *testing.T) (*service.AccountService, *store.MemoryAccountStore) {
	t.Helper()

	accounts := store.NewMemoryAccountStore()
	svc := service.NewAccountService(accounts, newLockManager(t), log.NewNop())

	return svc, accounts
}

func TestAccountService_CreateAccount(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	id, err := svc.CreateAccount(ctx, "110-2345-6789", "David Kim", dec(t, "1000"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	account, err := svc.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "110-2345-6789", account.AccountNumber)
	assert.Equal(t, "David Kim", account.AccountName)
	assert.True(t, account.Balance.Equal(dec(t, "1000")))
	assert.Equal(t, domain.AccountStatusActive, account.Status)
}

func TestAccountService_CreateAccount_DuplicateNumber(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "110-2345-6789", "first", dec(t, "1000"))
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, "110-2345-6789", "second", dec(t, "500"))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrorDuplicateAccountNumber))
}

func TestAccountService_CreateAccount_InvalidInput(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "110-0000-0000", "zero opening", decimal.Zero)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrorInvalidInput))
}

func TestAccountService_DepositThenWithdraw(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	id, err := svc.CreateAccount(ctx, "110-2345-6789", "David Kim", dec(t, "1000"))
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, id, dec(t, "500"))
	require.NoError(t, err)

	account, err := svc.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec(t, "1500")))

	_, err = svc.Withdraw(ctx, id, dec(t, "200"))
	require.NoError(t, err)

	account, err = svc.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec(t, "1300")))
}

func TestAccountService_Withdraw_Insufficient(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	id, err := svc.CreateAccount(ctx, "110-2345-6789", "David Kim", dec(t, "1000"))
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, id, dec(t, "1500"))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrorInsufficientBalance))

	// Failed withdrawal leaves the balance untouched.
	account, err := svc.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec(t, "1000")))
}

func TestAccountService_MutateUnknownAccount(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, uuid.New(), dec(t, "100"))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrorAccountNotFound))

	_, err = svc.Withdraw(ctx, uuid.New(), dec(t, "100"))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrorAccountNotFound))
}

func TestAccountService_MutateInactiveAccount(t *testing.T) {
	svc, accounts := newAccountService(t)
	ctx := context.Background()

	id, err := svc.CreateAccount(ctx, "110-2345-6789", "David Kim", dec(t, "1000"))
	require.NoError(t, err)

	account, err := accounts.FindByID(ctx, id)
	require.NoError(t, err)

	account.Status = domain.AccountStatusInactive
	_, err = accounts.Save(ctx, account)
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, id, dec(t, "100"))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrorInactiveAccount))

	_, err = svc.Withdraw(ctx, id, dec(t, "100"))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrorInactiveAccount))
}

func TestAccountService_ConcurrentDeposits(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	id, err := svc.CreateAccount(ctx, "110-2345-6789", "David Kim", dec(t, "1000"))
	require.NoError(t, err)

	const workers = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := svc.Deposit(ctx, id, dec(t, "100"))
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	account, err := svc.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec(t, "2000")),
		"expected 2000, got %s", account.Balance)
}

func TestAccountService_ConcurrentWithdrawals(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	id, err := svc.CreateAccount(ctx, "110-2345-6789", "David Kim", dec(t, "1000"))
	require.NoError(t, err)

	// Five concurrent withdrawals of 300 from 1000: exactly three fit, the
	// rest fail on balance. The lock serializes them, so the outcome is a
	// prefix of successes rather than a torn balance.
	const workers = 5

	var (
		succeeded int
		mu        sync.Mutex
		wg        sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := svc.Withdraw(ctx, id, dec(t, "300"))
			if err != nil {
				assert.True(t, domain.IsCode(err, domain.ErrorInsufficientBalance))
				return
			}

			mu.Lock()
			succeeded++
			mu.Unlock()
		}()
	}

	wg.Wait()

	assert.Equal(t, 3, succeeded)

	account, err := svc.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec(t, "100")),
		"expected 100, got %s", account.Balance)
}

func TestAccountService_ListAccounts(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "110-0000-0001", "first", dec(t, "100"))
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, "110-0000-0002", "second", dec(t, "200"))
	require.NoError(t, err)

	accounts, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}
