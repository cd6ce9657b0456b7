package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientStorage keeps each browser session's storage in one Redis hash.
// Key format: client_storage:<sid>. Every write refreshes the hash TTL.
type ClientStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClientStorage creates a ClientStorage wrapping the given Redis client.
func NewClientStorage(client *redis.Client, ttl time.Duration) *ClientStorage {
	return &ClientStorage{client: client, ttl: ttl}
}

func (s *ClientStorage) Get(ctx context.Context, sid, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key(sid), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return v, true, nil
}

func (s *ClientStorage) Set(ctx context.Context, sid, key, value string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(sid), key, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key(sid), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}
	return nil
}

func (s *ClientStorage) Remove(ctx context.Context, sid, key string) error {
	if err := s.client.HDel(ctx, s.key(sid), key).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", key, err)
	}
	return nil
}

func (s *ClientStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *ClientStorage) key(sid string) string {
	return "client_storage:" + sid
}
