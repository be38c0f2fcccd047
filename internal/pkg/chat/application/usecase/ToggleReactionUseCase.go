package usecase

import (
	"context"
	"errors"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

type ToggleReactionInput struct {
	MessageID string
	Emoji     string
	UserID    string
}

type ToggleReactionOutput struct {
	RoomID    string
	MessageID string
	Emoji     string
	UserID    string
	Added     bool
}

// ToggleReactionUseCase adds the user's reaction, or removes it when present.
type ToggleReactionUseCase struct {
	Repo repository.ChatRepository
}

func NewToggleReactionUseCase(repo repository.ChatRepository) *ToggleReactionUseCase {
	return &ToggleReactionUseCase{Repo: repo}
}

func (uc *ToggleReactionUseCase) Execute(ctx context.Context, in ToggleReactionInput) (*ToggleReactionOutput, error) {
	if err := chat.ValidateEmoji(in.Emoji); err != nil {
		return nil, err
	}
	if in.MessageID == "" || in.UserID == "" {
		return nil, appErrors.InvalidPayload("messageId is required")
	}

	msg, err := uc.Repo.GetMessage(ctx, in.MessageID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, persistence(err)
	}
	if err := requireMember(ctx, uc.Repo, msg.RoomID, in.UserID); err != nil {
		return nil, err
	}

	added, err := uc.Repo.ToggleReaction(ctx, in.MessageID, in.Emoji, in.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, persistence(err)
	}
	return &ToggleReactionOutput{
		RoomID:    msg.RoomID,
		MessageID: in.MessageID,
		Emoji:     in.Emoji,
		UserID:    in.UserID,
		Added:     added,
	}, nil
}
