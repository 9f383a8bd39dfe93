// Package store is the persistence gateway for completed check-ins. Saves
// are idempotent per entry ID, which makes them safe under the orchestrators'
// retry policy: at-least-once from the caller's view, effectively-once in the
// stored timeline.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// Common errors for timeline store operations.
var (
	ErrInvalidConfig    = errors.New("invalid store configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
)

// Store persists completed check-ins and serves the recent history consumed
// by the crisis pattern layer.
type Store interface {
	// SaveEntry durably stores a completed check-in and returns its ID.
	// Writing the same entry ID twice is a no-op, not an error.
	SaveEntry(ctx context.Context, entry checkin.Entry) (string, error)

	// RecentEntries returns entries whose date falls within the last
	// windowDays, ordered most-recent-first.
	RecentEntries(ctx context.Context, windowDays int) ([]checkin.Entry, error)

	// Close releases any resources held by the store.
	Close() error
}

// Type selects a storage driver.
type Type string

const (
	TypeMemory Type = "memory"
	TypeRedis  Type = "redis"
	TypeSQLite Type = "sqlite"
)

// Option is a functional option for configuring a store.
type Option func(*config)

type config struct {
	redisClient *redis.Client
	redisTTL    time.Duration
	sqlitePath  string
}

// WithRedisClient sets the Redis client for the Redis driver.
func WithRedisClient(client *redis.Client) Option {
	return func(c *config) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the retention period for Redis entries.
func WithRedisTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.redisTTL = ttl
	}
}

// WithSQLitePath sets the database file for the SQLite driver.
func WithSQLitePath(path string) Option {
	return func(c *config) {
		c.sqlitePath = path
	}
}

// New creates a timeline store of the given type.
func New(storeType Type, opts ...Option) (Store, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case TypeMemory:
		return NewMemoryStore(), nil

	case TypeRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		ttl := cfg.redisTTL
		if ttl <= 0 {
			ttl = 90 * 24 * time.Hour
		}
		return newRedisStore(cfg.redisClient, ttl), nil

	case TypeSQLite:
		if cfg.sqlitePath == "" {
			return nil, ErrInvalidConfig
		}
		return OpenSQLite(cfg.sqlitePath)

	default:
		return nil, ErrInvalidStoreType
	}
}
