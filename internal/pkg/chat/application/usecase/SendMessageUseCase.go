package usecase

import (
	"context"
	"strings"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	"github.com/Akhielesh/secure-chat/internal/pkg/media"
	"github.com/Akhielesh/secure-chat/internal/pkg/ratelimit"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// SendMessageInput carries a new message from a connected sender.
type SendMessageInput struct {
	RoomID        string
	Sender        chat.Identity
	ConnectionID  string
	RemoteAddr    string
	Text          string
	AttachmentRef string
}

// SendMessageUseCase rate limits, authorizes, validates and persists a message
// together with its outbox record. Nothing is written unless every check passes.
type SendMessageUseCase struct {
	Repo    repository.ChatRepository
	Limiter Admitter
	Media   media.Resolver
	IDs     *chat.IDGenerator
	Outbox  OutboxKicker
}

func NewSendMessageUseCase(repo repository.ChatRepository, limiter Admitter, resolver media.Resolver, ids *chat.IDGenerator) *SendMessageUseCase {
	if ids == nil {
		ids = chat.NewIDGenerator(nil)
	}
	return &SendMessageUseCase{Repo: repo, Limiter: limiter, Media: resolver, IDs: ids}
}

// WithOutboxKicker triggers an immediate outbox drain after each saved message.
func (uc *SendMessageUseCase) WithOutboxKicker(k OutboxKicker) *SendMessageUseCase {
	uc.Outbox = k
	return uc
}

// Execute returns ErrDropped when the sender is not a member of the room.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.RoomID == "" || in.Sender.ID == "" {
		return nil, appErrors.InvalidPayload("roomId and sender are required")
	}

	if uc.Limiter != nil {
		ok, err := uc.Limiter.Admit(ctx, ratelimit.Subject{
			ConnectionID:   in.ConnectionID,
			NetworkAddress: in.RemoteAddr,
			UserID:         in.Sender.ID,
		})
		if err != nil {
			return nil, persistence(err)
		}
		if !ok {
			return nil, appErrors.ErrRateLimited
		}
	}

	member, err := uc.Repo.IsMember(ctx, in.RoomID, in.Sender.ID)
	if err != nil {
		return nil, persistence(err)
	}
	if !member {
		return nil, ErrDropped
	}

	var attachment *chat.Attachment
	if ref := strings.TrimSpace(in.AttachmentRef); ref != "" {
		if uc.Media == nil {
			return nil, appErrors.ErrInvalidAttachment
		}
		attachment, err = uc.Media.ResolveAttachment(ctx, ref, in.RoomID, in.Sender.ID)
		if err != nil {
			return nil, persistence(err)
		}
		if attachment == nil {
			return nil, appErrors.ErrInvalidAttachment
		}
	} else if _, err := chat.ValidateText(in.Text); err != nil {
		return nil, err
	}

	msg, err := chat.NewMessage(chat.Message{
		RoomID:     in.RoomID,
		UserID:     in.Sender.ID,
		UserName:   in.Sender.Name,
		Text:       in.Text,
		Attachment: attachment,
	})
	if err != nil {
		return nil, err
	}

	id, ts, err := uc.IDs.Next()
	if err != nil {
		return nil, appErrors.Internal("id generation failed", err)
	}
	msg.ID = id
	msg.TS = ts

	rec, err := chat.NewMessageSentRecord(*msg)
	if err != nil {
		return nil, appErrors.Internal("outbox encoding failed", err)
	}
	if err := uc.Repo.SaveMessage(ctx, *msg, rec); err != nil {
		return nil, persistence(err)
	}
	if uc.Outbox != nil {
		uc.Outbox.Kick(ctx)
	}
	return msg, nil
}
