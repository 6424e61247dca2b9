package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buscajob/buscajob/internal/model"
	"github.com/redis/go-redis/v9"
)

const latestKey = "buscajob:ultimo-resultado"

// RedisStore keeps the latest Result as JSON under a single key.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore parses redisURL and verifies connectivity.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Put(ctx context.Context, r Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := s.client.Set(ctx, latestKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing latest result: %w", err)
	}
	return nil
}

func (s *RedisStore) Latest(ctx context.Context) (Result, error) {
	data, err := s.client.Get(ctx, latestKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Result{}, model.ErrNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("loading latest result: %w", err)
	}

	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("decoding latest result: %w", err)
	}
	return r, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
