package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	roomHistoryKeyPrefix = "room:%s:history"
)

// HistoryTTL bounds staleness of the cached room feed. Reputation is never
// cached: it is re-derived from the vote log on every read.
const HistoryTTL = 2 * time.Minute

func RoomHistoryKey(hash string) string {
	return fmt.Sprintf(roomHistoryKeyPrefix, hash)
}

// Aside implements the cache-aside pattern: serve from Redis when possible,
// otherwise run fetch and store its result under key. With no Redis client
// it degrades to calling fetch directly.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	if b, err := client.Get(ctx, key).Bytes(); err == nil {
		if json.Unmarshal(b, dest) == nil {
			return nil
		}
	}

	if err := fetch(); err != nil {
		return err
	}

	if b, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, b, ttl)
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateRoomHistory(ctx context.Context, hash string) {
	Invalidate(ctx, RoomHistoryKey(hash))
}
