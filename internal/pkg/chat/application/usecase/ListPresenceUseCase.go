package usecase

import (
	"context"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
)

type ListPresenceInput struct {
	RoomID string
	UserID string
}

// ListPresenceUseCase returns the live roster of a room to one of its members.
type ListPresenceUseCase struct {
	Repo     repository.ChatRepository
	Presence Roster
}

func NewListPresenceUseCase(repo repository.ChatRepository, presence Roster) *ListPresenceUseCase {
	return &ListPresenceUseCase{Repo: repo, Presence: presence}
}

func (uc *ListPresenceUseCase) Execute(ctx context.Context, in ListPresenceInput) ([]chat.PresenceEntry, error) {
	if err := chat.ValidateRoomID(in.RoomID); err != nil {
		return nil, err
	}
	if err := requireMember(ctx, uc.Repo, in.RoomID, in.UserID); err != nil {
		return nil, err
	}
	users, err := uc.Presence.List(ctx, in.RoomID)
	if err != nil {
		return nil, persistence(err)
	}
	return users, nil
}
