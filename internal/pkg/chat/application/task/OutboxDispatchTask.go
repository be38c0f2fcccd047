package task

import (
	"context"
	"time"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	qport "github.com/Akhielesh/secure-chat/internal/infrastructure/queue/port"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/application/usecase"
)

// OutboxDispatchTaskType is the queue task name for draining the message outbox.
const OutboxDispatchTaskType = "chat:outbox_dispatch"

// ReceiptPruneTaskType is the queue task name for expiring old delivery receipts.
const ReceiptPruneTaskType = "chat:receipt_prune"

// RegisterOutboxDispatchTask binds the outbox dispatcher to the provided server.
func RegisterOutboxDispatchTask(srv qport.Server, uc *usecase.DispatchOutboxUseCase, log *logger.Logger) {
	srv.Register(OutboxDispatchTaskType, func(ctx context.Context, _ qport.Task) error {
		// give DB a reasonable time budget per task execution
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		out, err := uc.Execute(ctx)
		if err != nil {
			log.Error("outbox dispatch failed", "err", err)
			return err
		}
		if out.Processed > 0 {
			log.Debug("outbox dispatch", "processed", out.Processed, "pending", out.Pending)
		}
		return nil
	})
}

// RegisterReceiptPruneTask binds delivery receipt pruning to the provided server.
func RegisterReceiptPruneTask(srv qport.Server, uc *usecase.PruneDeliveriesUseCase) {
	srv.Register(ReceiptPruneTaskType, func(ctx context.Context, _ qport.Task) error {
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		_, err := uc.Execute(ctx)
		return err
	})
}
