package usecase

import (
	"context"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// GetMessageInput pages a room's history backwards from BeforeID.
// An empty BeforeID starts at the newest message.
type GetMessageInput struct {
	RoomID   string
	UserID   string
	BeforeID string
	Limit    int
}

// GetMessageUseCase fetches a page of room history for a member, oldest first.
type GetMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewGetMessageUseCase(repo repository.ChatRepository) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo}
}

func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.Message, error) {
	if err := chat.ValidateRoomID(in.RoomID); err != nil {
		return nil, err
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
	msgs, err := uc.Repo.ListMessages(ctx, in.RoomID, in.BeforeID, limit)
	if err != nil {
		return nil, persistence(err)
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return msgs, nil
}
