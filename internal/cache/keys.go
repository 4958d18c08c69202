package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ProfileKeyPrefix  = "profile:%d"
	WSTicketKeyPrefix = "ws_ticket:%s"
)

const (
	ProfileTTL  = 5 * time.Minute
	WSTicketTTL = 60 * time.Second
)

// ProfileKey is the cache key of a profile snapshot.
func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

// WSTicketKey is the key of a single-use websocket ticket.
func WSTicketKey(ticket string) string {
	return fmt.Sprintf(WSTicketKeyPrefix, ticket)
}

// Invalidate deletes key. A nil client is a no-op.
func Invalidate(ctx context.Context, rdb *redis.Client, key string) {
	if rdb != nil {
		rdb.Del(ctx, key)
	}
}

// InvalidateProfile drops the cached snapshot of userID.
func InvalidateProfile(ctx context.Context, rdb *redis.Client, userID uint) {
	Invalidate(ctx, rdb, ProfileKey(userID))
}
