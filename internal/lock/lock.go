package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"go.opentelemetry.io/otel"

	"github.com/silverhyuk/david-remittance-service/internal/domain"
	"github.com/silverhyuk/david-remittance-service/internal/redis"
	"github.com/silverhyuk/david-remittance-service/pkg/log"
)

var (
	// ErrNilManager is returned when a method is called on a nil Manager.
	ErrNilManager = errors.New("lock manager is nil")
	// ErrNilFn is returned when a nil function is passed to WithLock.
	ErrNilFn = errors.New("lock function is nil")
	// ErrEmptyKey is returned when an empty lock key is provided.
	ErrEmptyKey = errors.New("lock key cannot be empty")
	// ErrInvalidLease is returned when the lease duration is not positive.
	ErrInvalidLease = errors.New("lock lease must be greater than 0")
)

const driftFactor = 0.01

// Options bounds one lock acquisition.
type Options struct {
	// Wait is the maximum time to block waiting for the lock before failing
	// with a lock acquisition error.
	Wait time.Duration

	// Lease is how long the lock is held before auto-expiring. The expiry is
	// a safety net against crashed holders, not a correctness mechanism; it
	// must exceed the worst-case duration of the guarded work.
	Lease time.Duration

	// RetryDelay is the pause between acquisition attempts within Wait.
	RetryDelay time.Duration
}

// DefaultOptions bounds single-account commands: deposit, withdraw, create.
func DefaultOptions() Options {
	return Options{
		Wait:       5 * time.Second,
		Lease:      10 * time.Second,
		RetryDelay: 250 * time.Millisecond,
	}
}

// TransferOptions bounds transfers, which touch two accounts and run longer.
func TransferOptions() Options {
	return Options{
		Wait:       10 * time.Second,
		Lease:      15 * time.Second,
		RetryDelay: 250 * time.Millisecond,
	}
}

// Manager provides distributed mutual exclusion using Redis and the RedLock
// algorithm. At most one holder of a given key exists across all service
// instances at any instant.
//
// Example:
//
//	err := mgr.WithLock(ctx, lock.Key("deposit", accountID), lock.DefaultOptions(), func(ctx context.Context) error {
//	    // critical section
//	    return nil
//	})
type Manager struct {
	redsync *redsync.Redsync
	logger  log.Logger
}

// NewManager creates a distributed lock manager on top of an established
// Redis connection.
//
// Thread-safe: multiple goroutines can share one Manager.
func NewManager(ctx context.Context, conn *redis.Connection, logger log.Logger) (*Manager, error) {
	client, err := conn.GetClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get redis client: %w", err)
	}

	if logger == nil {
		logger = log.NewNop()
	}

	pool := goredis.NewPool(client)

	return &Manager{
		redsync: redsync.New(pool),
		logger:  logger,
	}, nil
}

// WithLock executes fn while holding the distributed lock for key.
//
// Acquisition blocks up to opts.Wait; on expiry of the wait budget the call
// fails with a typed lock acquisition error and fn is never invoked. The lock
// is released on every exit path of fn; release errors are logged and
// swallowed so they never mask fn's outcome. fn's error is returned verbatim.
//
// This guard must be the outermost boundary around any unit of work that also
// talks to the stores, so the lock covers the full read-mutate-write sequence.
func (m *Manager) WithLock(ctx context.Context, key string, opts Options, fn func(context.Context) error) error {
	if m == nil || m.redsync == nil {
		return ErrNilManager
	}

	if fn == nil {
		return ErrNilFn
	}

	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	if opts.Lease <= 0 {
		return ErrInvalidLease
	}

	tracer := otel.Tracer("lock")

	ctx, span := tracer.Start(ctx, "lock.with_lock")
	defer span.End()

	mutex := m.redsync.NewMutex(
		key,
		redsync.WithExpiry(opts.Lease),
		redsync.WithTries(triesFor(opts)),
		redsync.WithRetryDelay(opts.RetryDelay),
		redsync.WithDriftFactor(driftFactor),
	)

	m.logger.Log(ctx, log.LevelDebug, "attempting to acquire lock", log.String("lock_key", key))

	if err := mutex.LockContext(ctx); err != nil {
		m.logger.Log(ctx, log.LevelError, "failed to acquire lock", log.String("lock_key", key), log.Err(err))
		span.RecordError(err)

		return domain.WrapError(domain.ErrorLockAcquisition,
			fmt.Sprintf("failed to acquire lock %s within %s", key, opts.Wait), err)
	}

	m.logger.Log(ctx, log.LevelDebug, "lock acquired", log.String("lock_key", key))

	// Release on every exit path of fn. A failed release is logged, never
	// returned: the lease expiry reclaims the key eventually.
	defer func() {
		if ok, err := mutex.UnlockContext(ctx); !ok || err != nil {
			m.logger.Log(ctx, log.LevelError, "failed to release lock",
				log.String("lock_key", key), log.Bool("unlock_ok", ok), log.Err(err))
		} else {
			m.logger.Log(ctx, log.LevelDebug, "lock released", log.String("lock_key", key))
		}
	}()

	if err := fn(ctx); err != nil {
		m.logger.Log(ctx, log.LevelError, "function execution failed under lock",
			log.String("lock_key", key), log.Err(err))
		span.RecordError(err)

		return err
	}

	return nil
}

// triesFor converts the wait budget into a redsync attempt count. The first
// attempt is immediate; each further attempt costs one RetryDelay.
func triesFor(opts Options) int {
	if opts.Wait <= 0 || opts.RetryDelay <= 0 {
		return 1
	}

	return int(opts.Wait/opts.RetryDelay) + 1
}
