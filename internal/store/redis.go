package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/st3v3nmw/hiscore/internal/scores"
)

// RedisBackend stores each scope's JSON list under <prefix>_<version>_<level>.
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

// OpenRedisBackend connects to the server at url (redis:// or rediss://).
func OpenRedisBackend(ctx context.Context, url, prefix string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisBackend(rdb, prefix), nil
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(rdb *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{rdb: rdb, prefix: prefix}
}

func (b *RedisBackend) Read(ctx context.Context, key scores.ScopeKey) ([]byte, error) {
	data, err := b.rdb.Get(ctx, key.Name(b.prefix)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotExist
	}

	return data, err
}

// SET replaces the value in one step, so readers never see partial content.
func (b *RedisBackend) Write(ctx context.Context, key scores.ScopeKey, data []byte) error {
	return b.rdb.Set(ctx, key.Name(b.prefix), data, 0).Err()
}

func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
