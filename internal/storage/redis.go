package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps every document in one string key, <prefix><name>.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	return &RedisBackend{
		client: client,
		prefix: opts.KeyPrefix,
	}, nil
}

func (b *RedisBackend) key(name string) string {
	return b.prefix + name
}

func (b *RedisBackend) Exists(ctx context.Context, name string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(name)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", name, err)
	}

	return n > 0, nil
}

func (b *RedisBackend) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return data, nil
}

func (b *RedisBackend) Write(ctx context.Context, name string, data []byte) error {
	if err := b.client.Set(ctx, b.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
