package adapter

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
)

// MemoryChatRepository keeps all state in process memory. It backs the "memory"
// store driver for local runs and gateway tests.
type MemoryChatRepository struct {
	mu         sync.Mutex
	now        func() time.Time
	rooms      map[string]*chat.Room
	members    map[string]map[string]time.Time // roomID -> userID -> joinedAt
	messages   map[string]*memMessage
	byRoom     map[string][]string // roomID -> message ids, ascending
	readStates map[string]chat.ReadState
	outbox     []*chat.OutboxRecord
}

type memMessage struct {
	msg        chat.Message
	reactions  map[string]map[string]struct{}
	deliveries map[string]time.Time
}

func NewMemoryChatRepository(now func() time.Time) *MemoryChatRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryChatRepository{
		now:        now,
		rooms:      make(map[string]*chat.Room),
		members:    make(map[string]map[string]time.Time),
		messages:   make(map[string]*memMessage),
		byRoom:     make(map[string][]string),
		readStates: make(map[string]chat.ReadState),
	}
}

var _ repository.ChatRepository = (*MemoryChatRepository)(nil)

func (r *MemoryChatRepository) EnsureRoom(_ context.Context, roomID string) error {
	r.mu.Lock()
	r.ensureRoomLocked(roomID)
	r.mu.Unlock()
	return nil
}

func (r *MemoryChatRepository) ensureRoomLocked(roomID string) {
	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = &chat.Room{ID: roomID, CreatedAt: r.now()}
	}
}

func (r *MemoryChatRepository) IsMember(_ context.Context, roomID string, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[roomID][userID]
	return ok, nil
}

func (r *MemoryChatRepository) BootstrapFirstMember(_ context.Context, roomID string, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureRoomLocked(roomID)
	if len(r.members[roomID]) > 0 {
		return false, nil
	}
	r.members[roomID] = map[string]time.Time{userID: r.now()}
	return true, nil
}

func (r *MemoryChatRepository) GrantMembership(_ context.Context, roomID string, userIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureRoomLocked(roomID)
	set := r.members[roomID]
	if set == nil {
		set = make(map[string]time.Time)
		r.members[roomID] = set
	}
	for _, id := range userIDs {
		if _, ok := set[id]; !ok {
			set[id] = r.now()
		}
	}
	return nil
}

func (r *MemoryChatRepository) SaveMessage(_ context.Context, m chat.Message, rec chat.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureRoomLocked(m.RoomID)
	m.Reactions = nil
	m.DeliveredBy = nil
	r.messages[m.ID] = &memMessage{
		msg:        m,
		reactions:  make(map[string]map[string]struct{}),
		deliveries: make(map[string]time.Time),
	}
	ids := r.byRoom[m.RoomID]
	i := sort.SearchStrings(ids, m.ID)
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = m.ID
	r.byRoom[m.RoomID] = ids

	rec.Payload = append([]byte(nil), rec.Payload...)
	r.outbox = append(r.outbox, &rec)
	return nil
}

func (r *MemoryChatRepository) GetMessage(_ context.Context, messageID string) (*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mm, ok := r.messages[messageID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m := mm.snapshot()
	return &m, nil
}

func (r *MemoryChatRepository) ListMessages(_ context.Context, roomID string, beforeID string, limit int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	ids := r.byRoom[roomID]
	end := len(ids)
	if beforeID != "" {
		end = sort.SearchStrings(ids, beforeID)
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	out := make([]chat.Message, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, r.messages[id].snapshot())
	}
	return out, nil
}

func (r *MemoryChatRepository) SearchMessages(_ context.Context, roomID string, query string, limit int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	terms := searchWords(query)
	if len(terms) == 0 {
		return nil, nil
	}
	ids := r.byRoom[roomID]
	var out []chat.Message
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		mm := r.messages[ids[i]]
		if containsWords(mm.msg.Text, terms) {
			out = append(out, mm.snapshot())
		}
	}
	return out, nil
}

// searchWords lowercases s and splits it on anything that is not a letter or digit.
func searchWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsWords(text string, terms []string) bool {
	have := make(map[string]struct{})
	for _, w := range searchWords(text) {
		have[w] = struct{}{}
	}
	for _, t := range terms {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

func (r *MemoryChatRepository) UpdateMessageText(_ context.Context, messageID string, userID string, text string, minTS int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mm, ok := r.messages[messageID]
	if !ok || mm.msg.UserID != userID || mm.msg.TS <= minTS {
		return false, nil
	}
	mm.msg.Text = text
	mm.msg.Edited = true
	return true, nil
}

func (r *MemoryChatRepository) ToggleReaction(_ context.Context, messageID string, emoji string, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mm, ok := r.messages[messageID]
	if !ok {
		return false, repository.ErrNotFound
	}
	users := mm.reactions[emoji]
	if _, exists := users[userID]; exists {
		delete(users, userID)
		if len(users) == 0 {
			delete(mm.reactions, emoji)
		}
		return false, nil
	}
	if users == nil {
		users = make(map[string]struct{})
		mm.reactions[emoji] = users
	}
	users[userID] = struct{}{}
	return true, nil
}

func (r *MemoryChatRepository) AddDelivery(_ context.Context, messageID string, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mm, ok := r.messages[messageID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if _, exists := mm.deliveries[userID]; !exists {
		mm.deliveries[userID] = r.now()
	}
	return len(mm.deliveries), nil
}

func (r *MemoryChatRepository) MarkRead(_ context.Context, rs chat.ReadState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rs.RoomID + "\x00" + rs.UserID
	cur, ok := r.readStates[key]
	if ok && !newerWatermark(rs, cur) {
		return false, nil
	}
	r.readStates[key] = rs
	return true, nil
}

func newerWatermark(next, cur chat.ReadState) bool {
	if next.LastReadTS != cur.LastReadTS {
		return next.LastReadTS > cur.LastReadTS
	}
	return next.LastReadMessageID > cur.LastReadMessageID
}

func (r *MemoryChatRepository) GetReadState(_ context.Context, roomID string, userID string) (*chat.ReadState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs, ok := r.readStates[roomID+"\x00"+userID]
	if !ok {
		return nil, nil
	}
	return &rs, nil
}

func (r *MemoryChatRepository) CountUnread(_ context.Context, roomID string, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs, hasWatermark := r.readStates[roomID+"\x00"+userID]
	var n int64
	for _, id := range r.byRoom[roomID] {
		m := r.messages[id].msg
		if m.UserID == userID {
			continue
		}
		if hasWatermark && !newerWatermark(chat.ReadState{LastReadTS: m.TS, LastReadMessageID: m.ID}, rs) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *MemoryChatRepository) DispatchOutbox(_ context.Context, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	processed := 0
	now := r.now()
	for _, rec := range r.outbox {
		if processed == limit {
			break
		}
		if rec.ProcessedAt != nil {
			continue
		}
		if rec.Kind == chat.OutboxKindMessageSent {
			if mm, ok := r.messages[messageIDOf(rec)]; ok {
				room := r.rooms[mm.msg.RoomID]
				room.MessageCount++
				at := mm.msg.CreatedAt()
				if room.LastMessageAt == nil || at.After(*room.LastMessageAt) {
					room.LastMessageAt = &at
				}
			}
		}
		rec.ProcessedAt = &now
		processed++
	}
	return processed, nil
}

func (r *MemoryChatRepository) PendingOutbox(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rec := range r.outbox {
		if rec.ProcessedAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *MemoryChatRepository) PruneDeliveries(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, mm := range r.messages {
		for userID, at := range mm.deliveries {
			if at.Before(before) {
				delete(mm.deliveries, userID)
				n++
			}
		}
	}
	return n, nil
}

// Room returns a copy of the room record, used by tests and diagnostics.
func (r *MemoryChatRepository) Room(roomID string) (chat.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return chat.Room{}, false
	}
	return *room, true
}

func messageIDOf(rec *chat.OutboxRecord) string {
	var p chat.MessageSentPayload
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return ""
	}
	return p.MessageID
}

func (mm *memMessage) snapshot() chat.Message {
	m := mm.msg
	m.Reactions = chat.Reactions{}
	for emoji, users := range mm.reactions {
		for userID := range users {
			m.Reactions.AddReaction(emoji, userID)
		}
	}
	m.DeliveredBy = make([]string, 0, len(mm.deliveries))
	for userID := range mm.deliveries {
		m.DeliveredBy = append(m.DeliveredBy, userID)
	}
	sort.Strings(m.DeliveredBy)
	return m
}
