package task

import (
	"context"
	"errors"
	"time"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	qport "github.com/Akhielesh/secure-chat/internal/infrastructure/queue/port"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/application/usecase"
)

// kickWindow collapses bursts of sends into one pending dispatch.
const kickWindow = time.Second

// OutboxKicker enqueues an immediate outbox dispatch task.
type OutboxKicker struct {
	client qport.Client
	log    *logger.Logger
}

var _ usecase.OutboxKicker = (*OutboxKicker)(nil)

func NewOutboxKicker(client qport.Client, log *logger.Logger) *OutboxKicker {
	return &OutboxKicker{client: client, log: log}
}

func (k *OutboxKicker) Kick(ctx context.Context) {
	_, err := k.client.Enqueue(ctx, qport.Task{Type: OutboxDispatchTaskType}, qport.EnqueueOption{
		Queue:     queueName,
		MaxRetry:  1,
		UniqueTTL: kickWindow,
	})
	if err != nil && !errors.Is(err, qport.ErrDuplicateTask) {
		k.log.Warn("outbox kick failed", "err", err)
	}
}
