package usecase

import (
	"context"

	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// requireMember returns not_member unless userID belongs to roomID.
func requireMember(ctx context.Context, repo repository.ChatRepository, roomID, userID string) error {
	ok, err := repo.IsMember(ctx, roomID, userID)
	if err != nil {
		return persistence(err)
	}
	if !ok {
		return appErrors.ErrNotMember
	}
	return nil
}
