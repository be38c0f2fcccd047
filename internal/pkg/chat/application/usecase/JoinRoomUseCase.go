package usecase

import (
	"context"
	"errors"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

const DefaultRecentLimit = 50

// JoinRoomInput carries a connection's request to enter a room.
// Name overrides the identity's display name when non-empty.
type JoinRoomInput struct {
	RoomID       string
	ConnectionID string
	Identity     chat.Identity
	Name         string
}

// JoinRoomOutput is everything a client needs to render the room after joining.
type JoinRoomOutput struct {
	RoomID    string
	Self      chat.Identity
	Entry     chat.PresenceEntry
	Users     []chat.PresenceEntry
	Messages  []chat.Message
	ReadState *chat.ReadState
}

// JoinRoomUseCase authorizes a user into a room and registers their presence.
// The first user to touch an empty room becomes its member; public rooms admit
// everyone; any other room requires an existing membership.
type JoinRoomUseCase struct {
	Repo        repository.ChatRepository
	Presence    Roster
	PublicRooms map[string]struct{}
	RecentLimit int
}

func NewJoinRoomUseCase(repo repository.ChatRepository, presence Roster, publicRooms []string, recentLimit int) *JoinRoomUseCase {
	public := make(map[string]struct{}, len(publicRooms))
	for _, id := range publicRooms {
		public[id] = struct{}{}
	}
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &JoinRoomUseCase{Repo: repo, Presence: presence, PublicRooms: public, RecentLimit: recentLimit}
}

func (uc *JoinRoomUseCase) Execute(ctx context.Context, in JoinRoomInput) (*JoinRoomOutput, error) {
	if err := chat.ValidateRoomID(in.RoomID); err != nil {
		return nil, err
	}
	if in.Identity.ID == "" || in.ConnectionID == "" {
		return nil, appErrors.InvalidPayload("identity and connection are required")
	}
	name, err := chat.NormalizeName(in.Name, in.Identity.Name)
	if err != nil {
		return nil, err
	}
	self := chat.Identity{ID: in.Identity.ID, Name: name}

	if err := uc.authorize(ctx, in.RoomID, self.ID); err != nil {
		return nil, err
	}

	entry, err := uc.Presence.Add(ctx, in.RoomID, in.ConnectionID, self)
	if err != nil {
		return nil, persistence(err)
	}
	out, err := uc.snapshot(ctx, in.RoomID, self)
	if err != nil {
		_, _ = uc.Presence.Remove(ctx, in.RoomID, in.ConnectionID)
		return nil, err
	}
	out.Entry = entry
	return out, nil
}

func (uc *JoinRoomUseCase) authorize(ctx context.Context, roomID, userID string) error {
	if err := uc.Repo.EnsureRoom(ctx, roomID); err != nil {
		return persistence(err)
	}
	first, err := uc.Repo.BootstrapFirstMember(ctx, roomID, userID)
	if err != nil {
		return persistence(err)
	}
	if first {
		return nil
	}
	if _, public := uc.PublicRooms[roomID]; public {
		if err := uc.Repo.GrantMembership(ctx, roomID, []string{userID}); err != nil {
			return persistence(err)
		}
		return nil
	}
	return requireMember(ctx, uc.Repo, roomID, userID)
}

func (uc *JoinRoomUseCase) snapshot(ctx context.Context, roomID string, self chat.Identity) (*JoinRoomOutput, error) {
	users, err := uc.Presence.List(ctx, roomID)
	if err != nil {
		return nil, persistence(err)
	}
	msgs, err := uc.Repo.ListMessages(ctx, roomID, "", uc.RecentLimit)
	if err != nil {
		return nil, persistence(err)
	}
	rs, err := uc.Repo.GetReadState(ctx, roomID, self.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, persistence(err)
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return &JoinRoomOutput{RoomID: roomID, Self: self, Users: users, Messages: msgs, ReadState: rs}, nil
}
