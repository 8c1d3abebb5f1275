package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "storefront:cart:"

type redisStorage struct {
	redisClient *redis.Client
	key         string
	ttl         time.Duration
}

// NewRedisStorage stores the cart of one session under storefront:cart:<sessionID>.
// A zero ttl keeps the cart forever; otherwise every save refreshes the expiry.
func NewRedisStorage(redisClient *redis.Client, sessionID string, ttl time.Duration) Storage {
	return &redisStorage{
		redisClient: redisClient,
		key:         redisKeyPrefix + sessionID,
		ttl:         ttl,
	}
}

func (r *redisStorage) Load(ctx context.Context) ([]byte, error) {
	val, err := r.redisClient.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Nothing saved yet
		}
		return nil, fmt.Errorf("failed to load cart %s: %w", r.key, err)
	}
	return val, nil
}

func (r *redisStorage) Save(ctx context.Context, data []byte) error {
	if err := r.redisClient.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", r.key, err)
	}
	return nil
}
