package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const lastSyncedPageKey = "storefront:sync:page"

type StateManager interface {
	GetLastSyncedPage(ctx context.Context) (int, error)
	SetLastSyncedPage(ctx context.Context, pageNumber int) error
}

type redisStateManager struct {
	redisClient *redis.Client
	key         string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		key:         lastSyncedPageKey,
	}
}

// GetLastSyncedPage returns 0 when no progress has been saved yet
func (s *redisStateManager) GetLastSyncedPage(ctx context.Context) (int, error) {
	val, err := s.redisClient.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get last synced page: %w", err)
	}

	page, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse last synced page %q: %w", val, err)
	}

	return page, nil
}

func (s *redisStateManager) SetLastSyncedPage(ctx context.Context, pageNumber int) error {
	err := s.redisClient.Set(ctx, s.key, pageNumber, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set last synced page: %w", err)
	}
	return nil
}
