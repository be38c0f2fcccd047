package usecase

import (
	"context"
	"errors"
	"sync"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	"github.com/Akhielesh/secure-chat/internal/pkg/ratelimit"
)

var errBoom = errors.New("boom")

type fakeRoster struct {
	mu      sync.Mutex
	entries map[string]map[string]chat.PresenceEntry
	addErr  error
	listErr error
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{entries: make(map[string]map[string]chat.PresenceEntry)}
}

func (r *fakeRoster) Add(_ context.Context, roomID, connID string, who chat.Identity) (chat.PresenceEntry, error) {
	if r.addErr != nil {
		return chat.PresenceEntry{}, r.addErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[roomID] == nil {
		r.entries[roomID] = make(map[string]chat.PresenceEntry)
	}
	e := chat.PresenceEntry{RoomID: roomID, ConnectionID: connID, UserID: who.ID, Name: who.Name}
	r.entries[roomID][connID] = e
	return e, nil
}

func (r *fakeRoster) Remove(_ context.Context, roomID, connID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[roomID][connID]
	delete(r.entries[roomID], connID)
	return ok, nil
}

func (r *fakeRoster) List(_ context.Context, roomID string) ([]chat.PresenceEntry, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]chat.PresenceEntry, 0, len(r.entries[roomID]))
	for _, e := range r.entries[roomID] {
		out = append(out, e)
	}
	return out, nil
}

type fakeAdmitter struct {
	allow bool
	err   error
	calls []ratelimit.Subject
}

func (a *fakeAdmitter) Admit(_ context.Context, s ratelimit.Subject) (bool, error) {
	a.calls = append(a.calls, s)
	return a.allow, a.err
}

type fakeKicker struct{ kicks int }

func (k *fakeKicker) Kick(context.Context) { k.kicks++ }
