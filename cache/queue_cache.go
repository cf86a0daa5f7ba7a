package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"EchoWave/db"
	"EchoWave/model"
)

// QueueTTL is how long a queue snapshot survives without being refreshed.
const QueueTTL = 24 * time.Hour

// QueueItem is one entry of a cached play queue.
type QueueItem struct {
	TrackID  int64  `json:"trackId"`
	Title    string `json:"title"`
	CoverArt string `json:"coverArt,omitempty"`
	Duration int64  `json:"duration,omitempty"`
	Position int    `json:"position"`
}

// QueueKey generates the Redis key for a user's play queue.
func QueueKey(userID int64) string {
	return fmt.Sprintf("queue:%d", userID)
}

// SaveQueue replaces the cached queue snapshot for the user. It is a no-op
// when Redis is not configured.
func SaveQueue(ctx context.Context, userID int64, tracks []*model.Track) error {
	if db.RedisClient == nil {
		return nil
	}

	queueKey := QueueKey(userID)
	if err := db.RedisClient.Del(ctx, queueKey).Err(); err != nil {
		return fmt.Errorf("failed to clear queue before save: %w", err)
	}
	if len(tracks) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(tracks))
	for i, track := range tracks {
		item := QueueItem{
			TrackID:  track.ID,
			Title:    track.Title,
			CoverArt: track.CoverArt,
			Duration: track.Duration,
			Position: i,
		}
		itemJSON, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal queue item: %w", err)
		}
		members = append(members, redis.Z{
			Score:  float64(i),
			Member: itemJSON,
		})
	}

	if err := db.RedisClient.ZAdd(ctx, queueKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to save queue: %w", err)
	}
	if err := db.RedisClient.Expire(ctx, queueKey, QueueTTL).Err(); err != nil {
		return fmt.Errorf("failed to set queue expiration: %w", err)
	}
	return nil
}

// GetQueue returns the cached queue in playback order. A missing key and an
// unconfigured Redis both yield an empty queue.
func GetQueue(ctx context.Context, userID int64) ([]QueueItem, error) {
	if db.RedisClient == nil {
		return nil, nil
	}

	result, err := db.RedisClient.ZRangeByScore(ctx, QueueKey(userID), &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}

	var queue []QueueItem
	for _, itemJSON := range result {
		var item QueueItem
		if err := json.Unmarshal([]byte(itemJSON), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal queue item: %w", err)
		}
		queue = append(queue, item)
	}
	return queue, nil
}

// ClearQueue drops the cached queue for the user.
func ClearQueue(ctx context.Context, userID int64) error {
	if db.RedisClient == nil {
		return nil
	}
	if err := db.RedisClient.Del(ctx, QueueKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	return nil
}
