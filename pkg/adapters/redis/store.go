package redis

import (
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "courier:"

// Option configures the Redis stores.
type Option func(*base)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(b *base) {
		b.prefix = prefix
	}
}

// base holds the connection and key namespace shared by all stores.
type base struct {
	client *backend.Client
	prefix string
}

func newBase(client *backend.Client, opts []Option) base {
	b := base{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// NewClient opens a Redis client for the given address.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}
