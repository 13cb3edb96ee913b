package redis

import (
	"context"
	"time"
)

// Client defines the subset of Redis operations the exchange core depends on.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=redis_mock
type Client interface {
	// Connect establishes the connection and pings the server.
	Connect(ctx context.Context) error
	// Get returns the value stored at key, or the empty string when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value at key with the given expiration. Zero expiration means no TTL.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Close releases the underlying connection pool.
	Close() error
}
