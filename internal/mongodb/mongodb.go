// Package mongodb wraps the MongoDB driver with connection lifecycle and
// index helpers for the service's stores.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/silverhyuk/david-remittance-service/pkg/log"
)

const (
	defaultServerSelectionTimeout = 5 * time.Second
	defaultHeartbeatInterval      = 10 * time.Second
)

var (
	// ErrEmptyURI is returned when the Mongo URI is empty.
	ErrEmptyURI = errors.New("mongo uri cannot be empty")
	// ErrEmptyDatabaseName is returned when the database name is empty.
	ErrEmptyDatabaseName = errors.New("database name cannot be empty")
	// ErrClientClosed is returned when the client is not connected.
	ErrClientClosed = errors.New("mongo client is closed")
	// ErrConnect wraps connection establishment failures.
	ErrConnect = errors.New("mongo connect failed")
	// ErrPing wraps connectivity probe failures.
	ErrPing = errors.New("mongo ping failed")
)

// Config defines MongoDB connection behavior.
type Config struct {
	URI                    string
	Database               string
	MaxPoolSize            uint64
	ServerSelectionTimeout time.Duration
	HeartbeatInterval      time.Duration
	Logger                 log.Logger
}

func (cfg Config) validate() error {
	if strings.TrimSpace(cfg.URI) == "" {
		return ErrEmptyURI
	}

	if strings.TrimSpace(cfg.Database) == "" {
		return ErrEmptyDatabaseName
	}

	return nil
}

// Client wraps a MongoDB client with lifecycle and index helpers.
type Client struct {
	mu           sync.RWMutex
	client       *mongo.Client
	databaseName string
	logger       log.Logger
}

// NewClient validates config, connects to MongoDB, and returns a ready client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	clientOptions := options.Client().ApplyURI(cfg.URI)

	serverSelectionTimeout := cfg.ServerSelectionTimeout
	if serverSelectionTimeout <= 0 {
		serverSelectionTimeout = defaultServerSelectionTimeout
	}

	heartbeatInterval := cfg.HeartbeatInterval
	if heartbeatInterval <= 0 {
		heartbeatInterval = defaultHeartbeatInterval
	}

	clientOptions.SetServerSelectionTimeout(serverSelectionTimeout)
	clientOptions.SetHeartbeatInterval(heartbeatInterval)

	if cfg.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Log(ctx, log.LevelError, "mongo connect failed", log.Err(err))

		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	if err := mongoClient.Ping(ctx, nil); err != nil {
		if disconnectErr := mongoClient.Disconnect(ctx); disconnectErr != nil {
			logger.Log(ctx, log.LevelWarn, "failed to disconnect after ping failure", log.Err(disconnectErr))
		}

		logger.Log(ctx, log.LevelError, "mongo ping failed", log.Err(err))

		return nil, fmt.Errorf("%w: %w", ErrPing, err)
	}

	logger.Log(ctx, log.LevelInfo, "connected to mongo", log.String("database", cfg.Database))

	return &Client{
		client:       mongoClient,
		databaseName: cfg.Database,
		logger:       logger,
	}, nil
}

// Database returns the configured mongo database handle.
func (c *Client) Database() (*mongo.Database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.client == nil {
		return nil, ErrClientClosed
	}

	return c.client.Database(c.databaseName), nil
}

// Ping checks MongoDB availability using the active connection.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.client == nil {
		return ErrClientClosed
	}

	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrPing, err)
	}

	return nil
}

// Close releases the MongoDB connection. The client is marked closed even if
// disconnect fails, so callers never retry on a half-closed client.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}

	err := c.client.Disconnect(ctx)
	c.client = nil

	if err != nil {
		c.logger.Log(ctx, log.LevelError, "mongo disconnect failed", log.Err(err))

		return fmt.Errorf("mongo disconnect failed: %w", err)
	}

	return nil
}

// EnsureIndexes creates indexes for a collection if they do not already exist.
func (c *Client) EnsureIndexes(ctx context.Context, collection string, indexes ...mongo.IndexModel) error {
	if strings.TrimSpace(collection) == "" {
		return errors.New("collection name cannot be empty")
	}

	database, err := c.Database()
	if err != nil {
		return err
	}

	for _, index := range indexes {
		if _, err := database.Collection(collection).Indexes().CreateOne(ctx, index); err != nil {
			return fmt.Errorf("mongo create index on %s failed: %w", collection, err)
		}
	}

	return nil
}
