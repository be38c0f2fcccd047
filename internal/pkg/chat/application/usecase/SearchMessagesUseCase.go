package usecase

import (
	"context"
	"strings"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// maxSearchQuery bounds the query text passed to the full-text index.
const maxSearchQuery = 200

type SearchMessagesInput struct {
	RoomID string
	UserID string
	Query  string
	Limit  int
}

// SearchMessagesUseCase runs a word search over one room's history for a member.
type SearchMessagesUseCase struct {
	Repo repository.ChatRepository
}

func NewSearchMessagesUseCase(repo repository.ChatRepository) *SearchMessagesUseCase {
	return &SearchMessagesUseCase{Repo: repo}
}

// Execute returns matches newest first.
func (uc *SearchMessagesUseCase) Execute(ctx context.Context, in SearchMessagesInput) ([]chat.Message, error) {
	if err := chat.ValidateRoomID(in.RoomID); err != nil {
		return nil, err
	}
	q := strings.TrimSpace(in.Query)
	if q == "" || len(q) > maxSearchQuery {
		return nil, appErrors.InvalidPayload("q must be 1-200 chars")
	}
	if err := requireMember(ctx, uc.Repo, in.RoomID, in.UserID); err != nil {
		return nil, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	msgs, err := uc.Repo.SearchMessages(ctx, in.RoomID, q, limit)
	if err != nil {
		return nil, persistence(err)
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return msgs, nil
}
