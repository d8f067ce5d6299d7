package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AniiitaCode/email-srv/internal/db"
)

// PreferenceTTL bounds staleness of cached preference rows. Preferences
// change rarely, but a stale enabled flag must not suppress or allow sends
// for long, so the window is kept short.
const PreferenceTTL = 1 * time.Minute

// PreferenceCache is a read-through cache of preference rows keyed by user id.
// All methods degrade to a cache miss on Redis errors; the database remains
// the source of truth.
type PreferenceCache struct {
	client *Client
	logger *zap.Logger
}

// NewPreferenceCache creates a new preference cache.
func NewPreferenceCache(client *Client, logger *zap.Logger) *PreferenceCache {
	return &PreferenceCache{
		client: client,
		logger: logger,
	}
}

func (c *PreferenceCache) buildKey(userID uuid.UUID) string {
	return fmt.Sprintf("preference:%s", userID)
}

// Get retrieves a cached preference. Returns (nil, nil) on a miss.
func (c *PreferenceCache) Get(ctx context.Context, userID uuid.UUID) (*db.Preference, error) {
	val, err := c.client.rdb.Get(ctx, c.buildKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var pref db.Preference
	if err := json.Unmarshal([]byte(val), &pref); err != nil {
		c.logger.Error("failed to unmarshal cached preference", zap.Error(err))
		return nil, fmt.Errorf("invalid cached preference: %w", err)
	}

	c.logger.Debug("preference cache hit",
		zap.String("user_id", userID.String()),
	)

	return &pref, nil
}

// Set stores a preference row with the standard TTL.
func (c *PreferenceCache) Set(ctx context.Context, pref *db.Preference) error {
	data, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("failed to marshal preference: %w", err)
	}

	if err := c.client.rdb.Set(ctx, c.buildKey(pref.UserID), data, PreferenceTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Invalidate drops the cached row for a user after a write.
func (c *PreferenceCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.rdb.Del(ctx, c.buildKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
