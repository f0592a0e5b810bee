// Package redisstore keeps the CSRF token in Redis with an expiry, keyed by the
// tab that owns it.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/painel-admin/internal/model"
)

var _ model.TokenStore = (*TokenStore)(nil)

const keyPrefix = "painel:csrf:"

// TokenStore implements model.TokenStore on a Redis string key.
type TokenStore struct {
	rdb redis.UniversalClient
	key string
	ttl time.Duration
}

// NewTokenStore creates a store for the tab identified by tabID. A zero ttl
// keeps the token until it is deleted.
func NewTokenStore(rdb redis.UniversalClient, tabID string, ttl time.Duration) *TokenStore {
	return &TokenStore{
		rdb: rdb,
		key: keyPrefix + tabID,
		ttl: ttl,
	}
}

func (s *TokenStore) Get(ctx context.Context) (string, error) {
	token, err := s.rdb.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("failed to get csrf token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Set(ctx context.Context, token string) error {
	if err := s.rdb.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set csrf token: %w", err)
	}
	return nil
}

func (s *TokenStore) Delete(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete csrf token: %w", err)
	}
	return nil
}
