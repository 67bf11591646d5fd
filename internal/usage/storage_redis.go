package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps the aggregate as a single JSON value under
// <prefix>usage.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage builds a redis-backed storage and verifies connectivity.
func NewRedisStorage(ctx context.Context, addr, password string, db int, prefix string) (*RedisStorage, error) {
	if prefix == "" {
		prefix = "ghpool:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisStorage{client: client, prefix: prefix}, nil
}

func (r *RedisStorage) key() string { return r.prefix + "usage" }

func (r *RedisStorage) Load(ctx context.Context) (*Stats, error) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	stats := NewStats()
	if err := json.Unmarshal(data, stats); err != nil {
		return nil, fmt.Errorf("parse usage snapshot: %w", err)
	}
	return stats, nil
}

func (r *RedisStorage) Save(ctx context.Context, stats *Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode usage stats: %w", err)
	}
	return r.client.Set(ctx, r.key(), data, 0).Err()
}

func (r *RedisStorage) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
