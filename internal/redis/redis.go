// Package redis manages the connection to the shared Redis instance backing
// the distributed lock.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/silverhyuk/david-remittance-service/pkg/log"
)

var (
	// ErrEmptyAddress is returned when no Redis address is configured.
	ErrEmptyAddress = errors.New("redis address cannot be empty")
	// ErrConnectionClosed is returned when the connection has been closed.
	ErrConnectionClosed = errors.New("redis connection is closed")
)

// Config defines Redis connection behavior.
type Config struct {
	Address  string
	Password string
	DB       int
	Logger   log.Logger
}

// Connection wraps a go-redis client with lazy connect and ping verification.
//
// Thread-safe: multiple goroutines can share one Connection.
type Connection struct {
	mu     sync.Mutex
	cfg    Config
	client *goredis.Client
	closed bool
	logger log.Logger
}

// NewConnection validates the config and returns an unconnected Connection.
// The client is established on first GetClient call.
func NewConnection(cfg Config) (*Connection, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, ErrEmptyAddress
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Connection{cfg: cfg, logger: logger}, nil
}

// GetClient returns a connected client, establishing and ping-verifying the
// connection on first use.
func (c *Connection) GetClient(ctx context.Context) (*goredis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}

	if c.client != nil {
		return c.client, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     c.cfg.Address,
		Password: c.cfg.Password,
		DB:       c.cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		closeErr := client.Close()
		if closeErr != nil {
			c.logger.Log(ctx, log.LevelWarn, "failed to close redis client after ping failure", log.Err(closeErr))
		}

		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	c.logger.Log(ctx, log.LevelInfo, "connected to redis", log.String("address", c.cfg.Address))
	c.client = client

	return c.client, nil
}

// Close releases the underlying client. The connection cannot be reused.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	if c.client == nil {
		return nil
	}

	err := c.client.Close()
	c.client = nil

	return err
}
