package redis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// presenceKey is a hash of user id to open connection count.
const presenceKey = "presence:online"

// releaseScript decrements a connection count and removes the field at zero
// in one step, so a concurrent MarkOnline cannot be lost in between.
//
//nolint:gochecknoglobals // compiled once
var releaseScript = redis.NewScript(`
local n = redis.call("HINCRBY", KEYS[1], ARGV[1], -1)
if n <= 0 then
	redis.call("HDEL", KEYS[1], ARGV[1])
end
return n
`)

// MarkOnline records one more open connection for userID.
func (ps *PubSub) MarkOnline(ctx context.Context, userID uuid.UUID) error {
	if err := ps.client.HIncrBy(ctx, presenceKey, userID.String(), 1).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.MarkOnline: %w", err)
	}
	return nil
}

// MarkOffline releases one connection for userID. The user drops out of the
// online set once the count reaches zero.
func (ps *PubSub) MarkOffline(ctx context.Context, userID uuid.UUID) error {
	if err := releaseScript.Run(ctx, ps.client, []string{presenceKey}, userID.String()).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.MarkOffline: %w", err)
	}
	return nil
}

// Online returns the set of users with at least one open connection.
func (ps *PubSub) Online(ctx context.Context) (map[uuid.UUID]bool, error) {
	fields, err := ps.client.HKeys(ctx, presenceKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis.PubSub.Online: %w", err)
	}

	out := make(map[uuid.UUID]bool, len(fields))
	for _, f := range fields {
		id, err := uuid.Parse(f)
		if err != nil {
			continue
		}
		out[id] = true
	}
	return out, nil
}
