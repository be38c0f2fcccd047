package usecase

import (
	"context"
	"errors"
	"time"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

type EditMessageInput struct {
	MessageID   string
	RequesterID string
	Text        string
}

// EditMessageUseCase replaces a message's text. Only the sender may edit, and
// only within the edit window counted from the message's server timestamp.
type EditMessageUseCase struct {
	Repo   repository.ChatRepository
	Window time.Duration
	Now    func() time.Time
}

func NewEditMessageUseCase(repo repository.ChatRepository, window time.Duration) *EditMessageUseCase {
	if window <= 0 {
		window = chat.DefaultEditWindow
	}
	return &EditMessageUseCase{Repo: repo, Window: window, Now: time.Now}
}

func (uc *EditMessageUseCase) Execute(ctx context.Context, in EditMessageInput) (*chat.Message, error) {
	if in.MessageID == "" {
		return nil, appErrors.InvalidPayload("messageId is required")
	}
	text, err := chat.ValidateText(in.Text)
	if err != nil {
		return nil, err
	}

	msg, err := uc.Repo.GetMessage(ctx, in.MessageID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, persistence(err)
	}

	now := uc.Now()
	if err := msg.CanEdit(in.RequesterID, now, uc.Window); err != nil {
		return nil, err
	}

	// The same guard is re-checked in the update so a slow request cannot
	// slip past the window.
	minTS := now.Add(-uc.Window).UnixMilli()
	ok, err := uc.Repo.UpdateMessageText(ctx, in.MessageID, in.RequesterID, text, minTS)
	if err != nil {
		return nil, persistence(err)
	}
	if !ok {
		return nil, appErrors.ErrEditForbidden
	}

	msg.Text = text
	msg.Edited = true
	return msg, nil
}
