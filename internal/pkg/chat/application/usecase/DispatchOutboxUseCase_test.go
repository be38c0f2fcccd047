package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/mocks"
)

func TestDispatchOutbox_DrainsFullBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		repo.EXPECT().DispatchOutbox(ctx, 2).Return(2, nil),
		repo.EXPECT().DispatchOutbox(ctx, 2).Return(1, nil),
		repo.EXPECT().PendingOutbox(ctx).Return(int64(0), nil),
	)

	out, err := NewDispatchOutboxUseCase(repo, 2, nil).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchOutboxOutput{Processed: 3, Pending: 0}, *out)
}

func TestDispatchOutbox_StopsAfterMaxRounds(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	ctx := context.Background()

	repo.EXPECT().DispatchOutbox(ctx, 1).Return(1, nil).Times(maxOutboxRounds)
	repo.EXPECT().PendingOutbox(ctx).Return(int64(7), nil)

	out, err := NewDispatchOutboxUseCase(repo, 1, nil).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, maxOutboxRounds, out.Processed)
	assert.Equal(t, int64(7), out.Pending)
}

func TestDispatchOutbox_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	repo.EXPECT().DispatchOutbox(gomock.Any(), DefaultOutboxBatch).Return(0, errBoom)

	_, err := NewDispatchOutboxUseCase(repo, 0, nil).Execute(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestPruneDeliveries(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	repo.EXPECT().PruneDeliveries(gomock.Any(), now.Add(-14*24*time.Hour)).Return(int64(4), nil)
	uc := NewPruneDeliveriesUseCase(repo, 14*24*time.Hour, nil)
	uc.Now = func() time.Time { return now }
	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = NewPruneDeliveriesUseCase(repo, 0, nil).Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
