package store

import (
	"context"
	stderrors "errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/distindex/pkg/errors"
)

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
}

// RedisStore keeps snapshots in Redis. Expiry is left to Redis.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore connects to Redis and checks the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis at %s", cfg.Addr)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client. The store closes it on
// Close.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get retrieves a snapshot.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, key).Bytes()
		return redisError(err)
	})
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "redis get %s", key)
	}
	return data, true, nil
}

// Set stores a snapshot with the given ttl.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := errors.ValidateStoreKey(key); err != nil {
		return err
	}
	err := RetryWithBackoff(ctx, func() error {
		return redisError(s.client.Set(ctx, key, data, max(ttl, 0)).Err())
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "redis set %s", key)
	}
	return nil
}

// Delete removes a snapshot.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := RetryWithBackoff(ctx, func() error {
		return redisError(s.client.Del(ctx, key).Err())
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "redis delete %s", key)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// redisError marks network failures as retryable.
func redisError(err error) error {
	var ne net.Error
	if stderrors.As(err, &ne) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*RedisStore)(nil)
