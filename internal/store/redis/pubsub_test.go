package redis_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	redisstore "github.com/gosuda/planner/internal/store/redis"
)

func TestRoomChannel(t *testing.T) {
	t.Parallel()

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "room:general", redisstore.RoomChannel("general"))
	})

	t.Run("empty room", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "room:", redisstore.RoomChannel(""))
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		got := redisstore.RoomChannel("warehouse")
		assert.True(t, strings.HasPrefix(got, "room:"), "expected prefix 'room:', got %q", got)
	})

	t.Run("unicode names are kept verbatim", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "room:склад", redisstore.RoomChannel("склад"))
	})

	t.Run("different rooms produce different channels", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, redisstore.RoomChannel("a"), redisstore.RoomChannel("b"))
	})
}
