package usecase

import (
	"context"
	"strings"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// GrantMembershipInput lets an existing member add other users to a room.
// Variables with multiple items use plural naming.
type GrantMembershipInput struct {
	RoomID    string
	GranterID string
	UserIDs   []string
}

// GrantMembershipUseCase adds members to a room. Granting an existing member is a no-op.
type GrantMembershipUseCase struct {
	Repo repository.ChatRepository
}

func NewGrantMembershipUseCase(repo repository.ChatRepository) *GrantMembershipUseCase {
	return &GrantMembershipUseCase{Repo: repo}
}

// Execute returns the de-duplicated list of user ids that were granted.
func (uc *GrantMembershipUseCase) Execute(ctx context.Context, in GrantMembershipInput) ([]string, error) {
	if err := chat.ValidateRoomID(in.RoomID); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(in.UserIDs))
	userIDs := make([]string, 0, len(in.UserIDs))
	for _, uid := range in.UserIDs {
		uid = strings.TrimSpace(uid)
		if uid == "" {
			continue
		}
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		userIDs = append(userIDs, uid)
	}
	if len(userIDs) == 0 {
		return nil, appErrors.InvalidPayload("userIds must include at least one user id")
	}

	if err := requireMember(ctx, uc.Repo, in.RoomID, in.GranterID); err != nil {
		return nil, err
	}
	if err := uc.Repo.GrantMembership(ctx, in.RoomID, userIDs); err != nil {
		return nil, persistence(err)
	}
	return userIDs, nil
}
