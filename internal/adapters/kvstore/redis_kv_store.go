package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKVStore stores entries as plain Redis strings under Prefix+key.
type RedisKVStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisKVStore(client *redis.Client, prefix string) *RedisKVStore {
	return &RedisKVStore{Client: client, Prefix: prefix}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.Client == nil {
		return "", false, errors.New("kv store: redis client is nil")
	}

	v, err := s.Client.Get(ctx, s.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get redis kv key=%q: %w", key, err)
	}

	return v, true, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key string, value string) error {
	if s.Client == nil {
		return errors.New("kv store: redis client is nil")
	}

	// Expiry is enforced by the reader, so entries are stored without a TTL.
	if err := s.Client.Set(ctx, s.Prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set redis kv key=%q: %w", key, err)
	}

	return nil
}

func (s *RedisKVStore) Remove(ctx context.Context, key string) error {
	if s.Client == nil {
		return errors.New("kv store: redis client is nil")
	}

	if err := s.Client.Del(ctx, s.Prefix+key).Err(); err != nil {
		return fmt.Errorf("delete redis kv key=%q: %w", key, err)
	}

	return nil
}
