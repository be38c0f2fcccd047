package usecase

import (
	"context"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	"github.com/Akhielesh/secure-chat/internal/pkg/ratelimit"
)

// Roster is the presence surface the use cases need. presence.Tracker implements it.
type Roster interface {
	Add(ctx context.Context, roomID, connID string, who chat.Identity) (chat.PresenceEntry, error)
	Remove(ctx context.Context, roomID, connID string) (bool, error)
	List(ctx context.Context, roomID string) ([]chat.PresenceEntry, error)
}

// Admitter decides whether a request may proceed. ratelimit.Limiter implements it.
type Admitter interface {
	Admit(ctx context.Context, s ratelimit.Subject) (bool, error)
}

// OutboxKicker asks for an outbox drain without waiting for the next tick.
// Failures are the kicker's to log; the periodic dispatch still catches up.
type OutboxKicker interface {
	Kick(ctx context.Context)
}
