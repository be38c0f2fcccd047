package presence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhielesh/secure-chat/internal/config"
	cacheAdapter "github.com/Akhielesh/secure-chat/internal/infrastructure/cache/adapter"
	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker(t *testing.T) (*Tracker, *fakeClock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	cfg := config.Presence{TTL: 90 * time.Second, StaleAfter: 90 * time.Second}
	tr := NewTracker(cacheAdapter.NewRedisStore(client), cfg, nil).WithClock(clock.Now)
	return tr, clock, mr
}

var (
	alice = chat.Identity{ID: "u-alice", Name: "Alice"}
	bob   = chat.Identity{ID: "u-bob", Name: "Bob"}
)

func TestTracker_AddAndList(t *testing.T) {
	tr, clock, mr := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.Add(ctx, "general", "c1", alice)
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = tr.Add(ctx, "general", "c2", bob)
	require.NoError(t, err)

	roster, err := tr.List(ctx, "general")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "c1", roster[0].ConnectionID)
	assert.Equal(t, "u-alice", roster[0].UserID)
	assert.Equal(t, "Alice", roster[0].Name)
	assert.Equal(t, "c2", roster[1].ConnectionID)
	assert.Equal(t, 90*time.Second, mr.TTL(roomKey("general")))
}

func TestTracker_ListEmptyRoom(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	roster, err := tr.List(context.Background(), "nobody-here")
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestTracker_ListPrunesStaleBeforeReturning(t *testing.T) {
	tr, clock, _ := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.Add(ctx, "general", "c-alice", alice)
	require.NoError(t, err)
	clock.Advance(60 * time.Second)
	_, err = tr.Add(ctx, "general", "c-bob", bob)
	require.NoError(t, err)

	clock.Advance(40 * time.Second)
	roster, err := tr.List(ctx, "general")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "c-bob", roster[0].ConnectionID)

	for _, e := range roster {
		assert.LessOrEqual(t, clock.Now().UnixMilli()-e.LastHeartbeat, (90 * time.Second).Milliseconds())
	}
}

func TestTracker_Heartbeat(t *testing.T) {
	tr, clock, _ := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.Add(ctx, "general", "c1", alice)
	require.NoError(t, err)

	clock.Advance(80 * time.Second)
	ok, err := tr.Heartbeat(ctx, "general", "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(80 * time.Second)
	roster, err := tr.List(ctx, "general")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, clock.Now().Add(-80*time.Second).UnixMilli(), roster[0].LastHeartbeat)
}

func TestTracker_HeartbeatUnknownIsNoop(t *testing.T) {
	tr, _, mr := newTestTracker(t)
	ok, err := tr.Heartbeat(context.Background(), "general", "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(roomKey("general")))
}

func TestTracker_HeartbeatOnStaleEntryIsNoop(t *testing.T) {
	tr, clock, _ := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.Add(ctx, "general", "c-alice", alice)
	require.NoError(t, err)
	clock.Advance(60 * time.Second)
	_, err = tr.Add(ctx, "general", "c-bob", bob)
	require.NoError(t, err)

	clock.Advance(31 * time.Second)
	ok, err := tr.Heartbeat(ctx, "general", "c-alice")
	require.NoError(t, err)
	assert.False(t, ok)

	roster, err := tr.List(ctx, "general")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "c-bob", roster[0].ConnectionID)
}

func TestTracker_TTLExpiry(t *testing.T) {
	tr, clock, mr := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.Add(ctx, "general", "c1", alice)
	require.NoError(t, err)

	clock.Advance(91 * time.Second)
	mr.FastForward(91 * time.Second)

	roster, err := tr.List(ctx, "general")
	require.NoError(t, err)
	assert.Empty(t, roster)

	ok, err := tr.Heartbeat(ctx, "general", "c1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTracker_Remove(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.Add(ctx, "general", "c1", alice)
	require.NoError(t, err)

	removed, err := tr.Remove(ctx, "general", "c1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = tr.Remove(ctx, "general", "c1")
	require.NoError(t, err)
	assert.False(t, removed)

	roster, err := tr.List(ctx, "general")
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestTracker_GlobalSweep(t *testing.T) {
	tr, clock, mr := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.Add(ctx, "room-a", "c1", alice)
	require.NoError(t, err)
	_, err = tr.Add(ctx, "room-b", "c2", bob)
	require.NoError(t, err)
	clock.Advance(60 * time.Second)
	_, err = tr.Add(ctx, "room-b", "c3", alice)
	require.NoError(t, err)

	clock.Advance(45 * time.Second)
	removed, err := tr.GlobalSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.False(t, mr.Exists(roomKey("room-a")))
	fields, err := mr.HKeys(roomKey("room-b"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c3:info", "c3:hb"}, fields)
}
