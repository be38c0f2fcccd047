package usecase

import (
	"context"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
)

type GetUnreadCountInput struct {
	RoomID string
	UserID string
}

// GetUnreadCountUseCase counts messages from others newer than the user's watermark.
type GetUnreadCountUseCase struct {
	Repo repository.ChatRepository
}

func NewGetUnreadCountUseCase(repo repository.ChatRepository) *GetUnreadCountUseCase {
	return &GetUnreadCountUseCase{Repo: repo}
}

func (uc *GetUnreadCountUseCase) Execute(ctx context.Context, in GetUnreadCountInput) (int64, error) {
	if err := chat.ValidateRoomID(in.RoomID); err != nil {
		return 0, err
	}
	if err := requireMember(ctx, uc.Repo, in.RoomID, in.UserID); err != nil {
		return 0, err
	}
	n, err := uc.Repo.CountUnread(ctx, in.RoomID, in.UserID)
	if err != nil {
		return 0, persistence(err)
	}
	return n, nil
}
