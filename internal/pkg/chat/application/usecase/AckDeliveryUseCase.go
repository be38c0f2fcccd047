package usecase

import (
	"context"
	"errors"

	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// AckDeliveryInput scopes the ack to RoomID when set; the gateway passes the joined room.
type AckDeliveryInput struct {
	RoomID    string
	MessageID string
	UserID    string
}

// AckDeliveryOutput reports the delivered set size. Recorded is false when the
// ack came from the message's own sender, which is not counted.
type AckDeliveryOutput struct {
	RoomID         string
	MessageID      string
	DeliveredCount int
	Recorded       bool
}

// AckDeliveryUseCase records that a recipient received a message. Repeated acks
// from the same user are idempotent.
type AckDeliveryUseCase struct {
	Repo repository.ChatRepository
}

func NewAckDeliveryUseCase(repo repository.ChatRepository) *AckDeliveryUseCase {
	return &AckDeliveryUseCase{Repo: repo}
}

func (uc *AckDeliveryUseCase) Execute(ctx context.Context, in AckDeliveryInput) (*AckDeliveryOutput, error) {
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
	if in.RoomID != "" && msg.RoomID != in.RoomID {
		return nil, appErrors.ErrMessageNotFound
	}
	if err := requireMember(ctx, uc.Repo, msg.RoomID, in.UserID); err != nil {
		return nil, err
	}

	out := &AckDeliveryOutput{RoomID: msg.RoomID, MessageID: msg.ID, DeliveredCount: len(msg.DeliveredBy)}
	if msg.UserID == in.UserID {
		return out, nil
	}

	n, err := uc.Repo.AddDelivery(ctx, in.MessageID, in.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, persistence(err)
	}
	out.DeliveredCount = n
	out.Recorded = true
	return out, nil
}
