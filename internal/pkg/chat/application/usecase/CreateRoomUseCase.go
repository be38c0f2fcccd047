package usecase

import (
	"context"
	"strings"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

type CreateRoomInput struct {
	RoomID string
	UserID string
}

// CreateRoomUseCase creates a room and makes the caller its first member.
// A room that already has members is never claimed.
type CreateRoomUseCase struct {
	Repo repository.ChatRepository
}

func NewCreateRoomUseCase(repo repository.ChatRepository) *CreateRoomUseCase {
	return &CreateRoomUseCase{Repo: repo}
}

func (uc *CreateRoomUseCase) Execute(ctx context.Context, in CreateRoomInput) (string, error) {
	roomID := strings.TrimSpace(in.RoomID)
	if err := chat.ValidateRoomID(roomID); err != nil {
		return "", err
	}
	if in.UserID == "" {
		return "", appErrors.InvalidPayload("user is required")
	}
	if err := uc.Repo.EnsureRoom(ctx, roomID); err != nil {
		return "", persistence(err)
	}
	won, err := uc.Repo.BootstrapFirstMember(ctx, roomID, in.UserID)
	if err != nil {
		return "", persistence(err)
	}
	if !won {
		return "", appErrors.ErrRoomExists
	}
	return roomID, nil
}
