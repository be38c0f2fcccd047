//go:generate mockgen -source=ChatRepository.go -destination=../mocks/mock_chat_repository.go -package=mocks

package repository

import (
	"context"
	"errors"
	"time"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
)

// ErrNotFound is returned by adapters when a requested row does not exist.
var ErrNotFound = errors.New("repository: not found")

// ChatRepository defines durable persistence for rooms, memberships, messages,
// read state and the message outbox.
type ChatRepository interface {
	// EnsureRoom creates the room if it does not exist yet.
	EnsureRoom(ctx context.Context, roomID string) error
	IsMember(ctx context.Context, roomID string, userID string) (bool, error)
	// BootstrapFirstMember grants membership iff the room has no members.
	// Concurrent callers on the same room are serialized; at most one wins.
	BootstrapFirstMember(ctx context.Context, roomID string, userID string) (bool, error)
	GrantMembership(ctx context.Context, roomID string, userIDs []string) error

	// SaveMessage persists msg and rec in one transaction.
	SaveMessage(ctx context.Context, msg chat.Message, rec chat.OutboxRecord) error
	GetMessage(ctx context.Context, messageID string) (*chat.Message, error)
	// ListMessages returns up to limit messages older than beforeID (all when empty), oldest first.
	ListMessages(ctx context.Context, roomID string, beforeID string, limit int) ([]chat.Message, error)
	// SearchMessages returns up to limit messages in roomID whose text contains
	// every word of query, newest first.
	SearchMessages(ctx context.Context, roomID string, query string, limit int) ([]chat.Message, error)
	// UpdateMessageText edits a message owned by userID whose ts is greater than minTS.
	UpdateMessageText(ctx context.Context, messageID string, userID string, text string, minTS int64) (bool, error)
	ToggleReaction(ctx context.Context, messageID string, emoji string, userID string) (added bool, err error)
	// AddDelivery records userID in the delivered set and returns the set size.
	AddDelivery(ctx context.Context, messageID string, userID string) (int, error)

	// MarkRead advances the watermark; it reports false when rs is not newer than the stored one.
	MarkRead(ctx context.Context, rs chat.ReadState) (bool, error)
	GetReadState(ctx context.Context, roomID string, userID string) (*chat.ReadState, error)
	CountUnread(ctx context.Context, roomID string, userID string) (int64, error)

	// DispatchOutbox claims up to limit pending records, applies their side effects
	// and marks them processed. It returns the number processed.
	DispatchOutbox(ctx context.Context, limit int) (int, error)
	PendingOutbox(ctx context.Context) (int64, error)
	PruneDeliveries(ctx context.Context, before time.Time) (int64, error)
}
