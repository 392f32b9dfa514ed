package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 3 * time.Second

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	// TTL expires idle learner state. Zero keeps it forever.
	TTL time.Duration
}

// RedisBackend stores each learner key as a Redis string.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	return &RedisBackend{client: client, ttl: cfg.TTL, prefix: "learner:"}, nil
}

func (r *RedisBackend) redisKey(learnerID, key string) string {
	return r.prefix + learnerID + ":" + key
}

func (r *RedisBackend) Get(learnerID, key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.redisKey(learnerID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error getting state from redis: %w", err)
	}
	return value, nil
}

func (r *RedisBackend) Set(learnerID, key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.client.Set(ctx, r.redisKey(learnerID, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("error saving state to redis: %w", err)
	}
	return nil
}

func (r *RedisBackend) Delete(learnerID, key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.client.Del(ctx, r.redisKey(learnerID, key)).Err(); err != nil {
		return fmt.Errorf("error deleting key %s: %w", r.redisKey(learnerID, key), err)
	}
	return nil
}

// Close releases the client's connections.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
