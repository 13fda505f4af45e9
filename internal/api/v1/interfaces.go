package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/planner/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tasks() domain.TaskRepository
	Messages() domain.MessageRepository
	Users() domain.UserRepository
}

// Publisher fans a realtime frame out to a channel.
// *redis.PubSub satisfies this interface.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Presence reports which users hold an open realtime connection.
// *redis.PubSub satisfies this interface.
type Presence interface {
	Online(ctx context.Context) (map[uuid.UUID]bool, error)
}
