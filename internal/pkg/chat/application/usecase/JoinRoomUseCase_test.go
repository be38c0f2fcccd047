package usecase

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/mocks"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

func TestJoinRoom_FirstUserBootstraps(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	roster := newFakeRoster()
	ctx := context.Background()

	gomock.InOrder(
		repo.EXPECT().EnsureRoom(ctx, "team").Return(nil),
		repo.EXPECT().BootstrapFirstMember(ctx, "team", "alice").Return(true, nil),
		repo.EXPECT().ListMessages(ctx, "team", "", DefaultRecentLimit).Return(nil, nil),
		repo.EXPECT().GetReadState(ctx, "team", "alice").Return(nil, nil),
	)

	uc := NewJoinRoomUseCase(repo, roster, []string{"lobby"}, 0)
	out, err := uc.Execute(ctx, JoinRoomInput{RoomID: "team", ConnectionID: "c1", Identity: chat.Identity{ID: "alice", Name: "Alice"}, Name: "  Al "})
	require.NoError(t, err)
	assert.Equal(t, chat.Identity{ID: "alice", Name: "Al"}, out.Self)
	assert.Equal(t, "c1", out.Entry.ConnectionID)
	require.Len(t, out.Users, 1)
	assert.Equal(t, "Al", out.Users[0].Name)
	assert.NotNil(t, out.Messages)
	assert.Nil(t, out.ReadState)
}

func TestJoinRoom_PublicRoomGrants(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	ctx := context.Background()

	repo.EXPECT().EnsureRoom(ctx, "lobby").Return(nil)
	repo.EXPECT().BootstrapFirstMember(ctx, "lobby", "bob").Return(false, nil)
	repo.EXPECT().GrantMembership(ctx, "lobby", []string{"bob"}).Return(nil)
	repo.EXPECT().ListMessages(ctx, "lobby", "", 50).Return([]chat.Message{{ID: "m1"}}, nil)
	repo.EXPECT().GetReadState(ctx, "lobby", "bob").Return(&chat.ReadState{LastReadMessageID: "m1"}, nil)

	uc := NewJoinRoomUseCase(repo, newFakeRoster(), []string{"lobby"}, 50)
	out, err := uc.Execute(ctx, JoinRoomInput{RoomID: "lobby", ConnectionID: "c2", Identity: chat.Identity{ID: "bob", Name: "Bob"}})
	require.NoError(t, err)
	assert.Len(t, out.Messages, 1)
	assert.Equal(t, "m1", out.ReadState.LastReadMessageID)
}

func TestJoinRoom_NotMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	roster := newFakeRoster()
	ctx := context.Background()

	repo.EXPECT().EnsureRoom(ctx, "team").Return(nil)
	repo.EXPECT().BootstrapFirstMember(ctx, "team", "mallory").Return(false, nil)
	repo.EXPECT().IsMember(ctx, "team", "mallory").Return(false, nil)

	uc := NewJoinRoomUseCase(repo, roster, nil, 0)
	_, err := uc.Execute(ctx, JoinRoomInput{RoomID: "team", ConnectionID: "c3", Identity: chat.Identity{ID: "mallory", Name: "M"}})
	assert.Equal(t, appErrors.CodeNotMember, appErrors.CodeOf(err))

	users, _ := roster.List(ctx, "team")
	assert.Empty(t, users, "a rejected join must not leave presence behind")
}

func TestJoinRoom_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	uc := NewJoinRoomUseCase(repo, newFakeRoster(), nil, 0)
	ctx := context.Background()

	_, err := uc.Execute(ctx, JoinRoomInput{RoomID: "bad room!", ConnectionID: "c", Identity: chat.Identity{ID: "a", Name: "A"}})
	assert.ErrorIs(t, err, appErrors.ErrInvalidRoomID)

	_, err = uc.Execute(ctx, JoinRoomInput{RoomID: "ok", ConnectionID: "c", Identity: chat.Identity{ID: "a"}})
	assert.ErrorIs(t, err, appErrors.ErrInvalidDisplayName)
}

func TestJoinRoom_SnapshotFailureRemovesPresence(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	roster := newFakeRoster()
	ctx := context.Background()

	repo.EXPECT().EnsureRoom(ctx, "team").Return(nil)
	repo.EXPECT().BootstrapFirstMember(ctx, "team", "alice").Return(true, nil)
	repo.EXPECT().ListMessages(ctx, "team", "", DefaultRecentLimit).Return(nil, errBoom)

	uc := NewJoinRoomUseCase(repo, roster, nil, 0)
	_, err := uc.Execute(ctx, JoinRoomInput{RoomID: "team", ConnectionID: "c1", Identity: chat.Identity{ID: "alice", Name: "A"}})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, appErrors.CodeInternal, appErrors.CodeOf(err))

	users, _ := roster.List(ctx, "team")
	assert.Empty(t, users)
}

func TestLeaveRoom(t *testing.T) {
	roster := newFakeRoster()
	ctx := context.Background()
	_, _ = roster.Add(ctx, "team", "c1", chat.Identity{ID: "alice"})

	uc := NewLeaveRoomUseCase(roster)
	removed, err := uc.Execute(ctx, LeaveRoomInput{RoomID: "team", ConnectionID: "c1"})
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = uc.Execute(ctx, LeaveRoomInput{RoomID: "team", ConnectionID: "c1"})
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCreateRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	ctx := context.Background()
	uc := NewCreateRoomUseCase(repo)

	_, err := uc.Execute(ctx, CreateRoomInput{RoomID: "bad room", UserID: "alice"})
	assert.Equal(t, appErrors.CodeInvalidPayload, appErrors.CodeOf(err))

	gomock.InOrder(
		repo.EXPECT().EnsureRoom(ctx, "team").Return(nil),
		repo.EXPECT().BootstrapFirstMember(ctx, "team", "alice").Return(true, nil),
	)
	roomID, err := uc.Execute(ctx, CreateRoomInput{RoomID: " team ", UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "team", roomID)

	repo.EXPECT().EnsureRoom(ctx, "team").Return(nil)
	repo.EXPECT().BootstrapFirstMember(ctx, "team", "bob").Return(false, nil)
	_, err = uc.Execute(ctx, CreateRoomInput{RoomID: "team", UserID: "bob"})
	assert.ErrorIs(t, err, appErrors.ErrRoomExists)
	assert.Equal(t, appErrors.CodeForbidden, appErrors.CodeOf(err))
}
