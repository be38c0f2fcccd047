package usecase

import (
	"context"
	"errors"
	"time"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

type MarkReadInput struct {
	RoomID    string
	UserID    string
	MessageID string
}

// MarkReadOutput carries the stored watermark. Advanced is false when the
// message was not newer than the existing watermark.
type MarkReadOutput struct {
	ReadState chat.ReadState
	Advanced  bool
}

// MarkReadUseCase moves a user's read watermark forward to a message of the room.
type MarkReadUseCase struct {
	Repo repository.ChatRepository
	Now  func() time.Time
}

func NewMarkReadUseCase(repo repository.ChatRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo, Now: time.Now}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (*MarkReadOutput, error) {
	if in.RoomID == "" || in.UserID == "" || in.MessageID == "" {
		return nil, appErrors.InvalidPayload("roomId and messageId are required")
	}
	msg, err := uc.Repo.GetMessage(ctx, in.MessageID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, persistence(err)
	}
	if msg.RoomID != in.RoomID {
		return nil, appErrors.ErrMessageNotFound
	}

	rs := chat.ReadState{
		RoomID:            in.RoomID,
		UserID:            in.UserID,
		LastReadTS:        msg.TS,
		LastReadMessageID: msg.ID,
		UpdatedAt:         uc.Now().UTC(),
	}
	advanced, err := uc.Repo.MarkRead(ctx, rs)
	if err != nil {
		return nil, persistence(err)
	}
	return &MarkReadOutput{ReadState: rs, Advanced: advanced}, nil
}
