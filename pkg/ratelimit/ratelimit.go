package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CheckAndSet acquires a per-user rate-limit slot for the given action.
// A nil client disables limiting (local development without Redis).
func CheckAndSet(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)

	wasSet, err := rdb.SetNX(ctx, key, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// TTL reports how long until the user may retry the action.
func TTL(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	key := fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
	return rdb.TTL(ctx, key).Result()
}

// Clear releases a previously acquired slot (used when the guarded operation fails).
func Clear(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string) error {
	if rdb == nil {
		return nil
	}
	key := fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
	_, err := rdb.Del(ctx, key).Result()
	return err
}
