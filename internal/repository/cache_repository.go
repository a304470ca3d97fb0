package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/golink/internal/models"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// ProfileCache caches identity profiles by access token.
type ProfileCache interface {
	Get(ctx context.Context, token string) (*models.Profile, error)
	Set(ctx context.Context, token string, profile *models.Profile, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

type profileCache struct {
	redis *RedisDB
}

func NewProfileCache(redis *RedisDB) ProfileCache {
	return &profileCache{redis: redis}
}

func (r *profileCache) Get(ctx context.Context, token string) (*models.Profile, error) {
	data, err := r.redis.Client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

func (r *profileCache) Set(ctx context.Context, token string, profile *models.Profile, ttl time.Duration) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	return r.redis.Client.Set(ctx, r.key(token), data, ttl).Err()
}

func (r *profileCache) Delete(ctx context.Context, token string) error {
	return r.redis.Client.Del(ctx, r.key(token)).Err()
}

// key hashes the token so raw credentials never end up in Redis.
func (r *profileCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "profile:" + hex.EncodeToString(sum[:])
}
