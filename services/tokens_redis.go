package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps tokens under "menuToken:<chatID>" with no expiry;
// the server decides when a token stops being valid.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore connects to redisURL and pings it.
func NewRedisTokenStore(ctx context.Context, redisURL string) (*RedisTokenStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisTokenStore{client: client}, nil
}

func (r *RedisTokenStore) Get(ctx context.Context, chatID int64) (string, error) {
	token, err := r.client.Get(ctx, tokenKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return token, nil
}

func (r *RedisTokenStore) Set(ctx context.Context, chatID int64, token string) error {
	if token == "" {
		return r.Clear(ctx, chatID)
	}
	if err := r.client.Set(ctx, tokenKey(chatID), token, 0).Err(); err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}
	return nil
}

func (r *RedisTokenStore) Clear(ctx context.Context, chatID int64) error {
	if err := r.client.Del(ctx, tokenKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

func (r *RedisTokenStore) Close() error {
	return r.client.Close()
}
