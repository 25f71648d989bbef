package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Invalidator drops the cached session views of affected users after a
// status-changing transition. Invalidation is best effort: the state
// change has already committed, so failures are logged and swallowed.
type Invalidator struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewInvalidator(client *redis.Client, log zerolog.Logger) *Invalidator {
	return &Invalidator{client: client, log: log}
}

func sessionViewKey(userID string) string {
	return fmt.Sprintf("views:sessions:%s", userID)
}

func (i *Invalidator) InvalidateUsers(ctx context.Context, userIDs ...string) {
	if i.client == nil || len(userIDs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, sessionViewKey(id))
	}

	if err := i.client.Del(ctx, keys...).Err(); err != nil {
		i.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
