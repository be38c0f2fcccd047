// Package presence tracks which connections are currently in a room.
//
// Each room is one hash in the shared ephemeral store. A connection owns two
// fields: "<connId>:info" holding its identity and "<connId>:hb" holding the
// unix millisecond time of its last heartbeat. The hash TTL is refreshed on
// every add and heartbeat, so a room nobody heartbeats disappears on its own.
// Entries older than the staleness threshold are pruned whenever the roster is
// read and by a periodic sweep across all rooms.
package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Akhielesh/secure-chat/internal/config"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/cache/port"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
)

const (
	keyPrefix  = "presence:room:"
	infoSuffix = ":info"
	hbSuffix   = ":hb"
)

// KEYS[1] room hash; ARGV: info field, hb field, now ms, ttl ms, cutoff ms.
var heartbeatScript = port.NewScript(`
local hb = redis.call('HGET', KEYS[1], ARGV[2])
if (not hb) or redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
  return 0
end
if tonumber(hb) < tonumber(ARGV[5]) then
  redis.call('HDEL', KEYS[1], ARGV[1], ARGV[2])
  return 0
end
redis.call('HSET', KEYS[1], ARGV[2], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

// KEYS[1] room hash; ARGV[1] cutoff ms.
// Returns {removed, conn1, info1, hb1, conn2, info2, hb2, ...}.
var pruneScript = port.NewScript(`
local fields = redis.call('HGETALL', KEYS[1])
local cutoff = tonumber(ARGV[1])
local hb = {}
local info = {}
for i = 1, #fields, 2 do
  local f = fields[i]
  if string.sub(f, -3) == ':hb' then
    hb[string.sub(f, 1, -4)] = fields[i + 1]
  elseif string.sub(f, -5) == ':info' then
    info[string.sub(f, 1, -6)] = fields[i + 1]
  end
end
local removed = 0
local out = {0}
for conn, v in pairs(info) do
  local ts = tonumber(hb[conn])
  if ts == nil or ts < cutoff then
    redis.call('HDEL', KEYS[1], conn .. ':info', conn .. ':hb')
    removed = removed + 1
  else
    table.insert(out, conn)
    table.insert(out, v)
    table.insert(out, hb[conn])
  end
end
for conn, _ in pairs(hb) do
  if info[conn] == nil then
    redis.call('HDEL', KEYS[1], conn .. ':hb')
  end
end
out[1] = removed
return out
`)

type entryInfo struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joinedAt"`
}

// Tracker maintains per-room rosters in the shared store.
type Tracker struct {
	store      port.Store
	ttl        time.Duration
	staleAfter time.Duration
	now        func() time.Time
	log        *logger.Logger
}

func NewTracker(store port.Store, cfg config.Presence, log *logger.Logger) *Tracker {
	if cfg.TTL <= 0 {
		cfg.TTL = 90 * time.Second
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = cfg.TTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Tracker{
		store:      store,
		ttl:        cfg.TTL,
		staleAfter: cfg.StaleAfter,
		now:        time.Now,
		log:        log.With("component", "presence"),
	}
}

// WithClock overrides the time source.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

func roomKey(roomID string) string {
	return keyPrefix + roomID
}

// Add upserts the entry for connID with fresh timestamps and refreshes the room TTL.
func (t *Tracker) Add(ctx context.Context, roomID, connID string, who chat.Identity) (chat.PresenceEntry, error) {
	now := t.now().UnixMilli()
	info, err := json.Marshal(entryInfo{UserID: who.ID, Name: who.Name, JoinedAt: now})
	if err != nil {
		return chat.PresenceEntry{}, err
	}
	err = t.store.HSet(ctx, roomKey(roomID), t.ttl, map[string]string{
		connID + infoSuffix: string(info),
		connID + hbSuffix:   strconv.FormatInt(now, 10),
	})
	if err != nil {
		return chat.PresenceEntry{}, fmt.Errorf("presence add: %w", err)
	}
	return chat.PresenceEntry{
		RoomID:        roomID,
		ConnectionID:  connID,
		UserID:        who.ID,
		Name:          who.Name,
		JoinedAt:      now,
		LastHeartbeat: now,
	}, nil
}

// Heartbeat refreshes connID's heartbeat and the room TTL. It is a no-op returning
// false when the entry is gone or already stale; the client must rejoin.
func (t *Tracker) Heartbeat(ctx context.Context, roomID, connID string) (bool, error) {
	now := t.now()
	res, err := t.store.Eval(ctx, heartbeatScript, []string{roomKey(roomID)},
		connID+infoSuffix,
		connID+hbSuffix,
		now.UnixMilli(),
		t.ttl.Milliseconds(),
		now.Add(-t.staleAfter).UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("presence heartbeat: %w", err)
	}
	n, _ := res.(int64)
	return n == 1, nil
}

// Remove deletes connID's entry. It reports whether an entry existed.
func (t *Tracker) Remove(ctx context.Context, roomID, connID string) (bool, error) {
	n, err := t.store.HDel(ctx, roomKey(roomID), connID+infoSuffix, connID+hbSuffix)
	if err != nil {
		return false, fmt.Errorf("presence remove: %w", err)
	}
	return n > 0, nil
}

// List prunes stale entries and returns the live roster ordered by join time.
func (t *Tracker) List(ctx context.Context, roomID string) ([]chat.PresenceEntry, error) {
	_, entries, err := t.prune(ctx, roomID)
	return entries, err
}

// GlobalSweep prunes every room and returns how many entries were removed.
func (t *Tracker) GlobalSweep(ctx context.Context) (int, error) {
	keys, err := t.store.ScanKeys(ctx, keyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("presence sweep: %w", err)
	}
	total := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		removed, _, err := t.prune(ctx, strings.TrimPrefix(key, keyPrefix))
		if err != nil {
			t.log.Warn("sweep room failed", "key", key, "err", err)
			continue
		}
		total += removed
	}
	if total > 0 {
		t.log.Debug("presence swept", "rooms", len(keys), "removed", total)
	}
	return total, nil
}

func (t *Tracker) prune(ctx context.Context, roomID string) (int, []chat.PresenceEntry, error) {
	cutoff := t.now().Add(-t.staleAfter).UnixMilli()
	res, err := t.store.Eval(ctx, pruneScript, []string{roomKey(roomID)}, cutoff)
	if err != nil {
		return 0, nil, fmt.Errorf("presence list: %w", err)
	}
	reply, _ := res.([]any)
	if len(reply) == 0 {
		return 0, []chat.PresenceEntry{}, nil
	}
	removed, _ := reply[0].(int64)

	entries := make([]chat.PresenceEntry, 0, (len(reply)-1)/3)
	for i := 1; i+2 < len(reply); i += 3 {
		connID, _ := reply[i].(string)
		raw, _ := reply[i+1].(string)
		hbRaw, _ := reply[i+2].(string)

		var info entryInfo
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			t.log.Warn("dropping malformed presence entry", "roomId", roomID, "connectionId", connID, "err", err)
			continue
		}
		hb, _ := strconv.ParseInt(hbRaw, 10, 64)
		entries = append(entries, chat.PresenceEntry{
			RoomID:        roomID,
			ConnectionID:  connID,
			UserID:        info.UserID,
			Name:          info.Name,
			JoinedAt:      info.JoinedAt,
			LastHeartbeat: hb,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].JoinedAt != entries[j].JoinedAt {
			return entries[i].JoinedAt < entries[j].JoinedAt
		}
		return entries[i].ConnectionID < entries[j].ConnectionID
	})
	return int(removed), entries, nil
}
