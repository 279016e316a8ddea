// Package cache holds the Redis-backed pieces of the service.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"approvalflow/internal/config"
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// SessionRevoker blacklists signed-out token ids until their natural
// expiry. It implements service.TokenRevoker.
type SessionRevoker struct {
	rdb *redis.Client
}

func NewSessionRevoker(rdb *redis.Client) *SessionRevoker {
	return &SessionRevoker{rdb: rdb}
}

func key(jti string) string {
	return "revoked_token:" + jti
}

func (s *SessionRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key(jti), "1", ttl).Err()
}

func (s *SessionRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
