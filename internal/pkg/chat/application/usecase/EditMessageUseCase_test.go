package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/mocks"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

func TestEditMessage(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	sent := chat.Message{ID: "m1", RoomID: "team", UserID: "alice", Text: "old", TS: now.Add(-time.Minute).UnixMilli()}

	t.Run("sender within window", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockChatRepository(ctrl)
		m := sent
		repo.EXPECT().GetMessage(gomock.Any(), "m1").Return(&m, nil)
		repo.EXPECT().UpdateMessageText(gomock.Any(), "m1", "alice", "new", now.Add(-5*time.Minute).UnixMilli()).Return(true, nil)

		uc := NewEditMessageUseCase(repo, 0)
		uc.Now = func() time.Time { return now }
		got, err := uc.Execute(context.Background(), EditMessageInput{MessageID: "m1", RequesterID: "alice", Text: " new "})
		require.NoError(t, err)
		assert.Equal(t, "new", got.Text)
		assert.True(t, got.Edited)
	})

	t.Run("other user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockChatRepository(ctrl)
		m := sent
		repo.EXPECT().GetMessage(gomock.Any(), "m1").Return(&m, nil)

		uc := NewEditMessageUseCase(repo, 0)
		uc.Now = func() time.Time { return now }
		_, err := uc.Execute(context.Background(), EditMessageInput{MessageID: "m1", RequesterID: "bob", Text: "x"})
		assert.ErrorIs(t, err, appErrors.ErrEditForbidden)
	})

	t.Run("window elapsed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockChatRepository(ctrl)
		m := sent
		repo.EXPECT().GetMessage(gomock.Any(), "m1").Return(&m, nil)

		uc := NewEditMessageUseCase(repo, 0)
		uc.Now = func() time.Time { return now.Add(5 * time.Minute) }
		_, err := uc.Execute(context.Background(), EditMessageInput{MessageID: "m1", RequesterID: "alice", Text: "x"})
		assert.Equal(t, appErrors.CodeForbidden, appErrors.CodeOf(err))
	})

	t.Run("missing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockChatRepository(ctrl)
		repo.EXPECT().GetMessage(gomock.Any(), "m9").Return(nil, repository.ErrNotFound)

		uc := NewEditMessageUseCase(repo, 0)
		_, err := uc.Execute(context.Background(), EditMessageInput{MessageID: "m9", RequesterID: "alice", Text: "x"})
		assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
	})

	t.Run("invalid text never reads", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockChatRepository(ctrl)

		uc := NewEditMessageUseCase(repo, 0)
		_, err := uc.Execute(context.Background(), EditMessageInput{MessageID: "m1", RequesterID: "alice", Text: "  "})
		assert.ErrorIs(t, err, appErrors.ErrInvalidText)
	})
}
