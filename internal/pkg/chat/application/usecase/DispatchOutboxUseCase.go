package usecase

import (
	"context"
	"time"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
)

const (
	DefaultOutboxBatch = 100
	maxOutboxRounds    = 10
)

type DispatchOutboxOutput struct {
	Processed int
	Pending   int64
}

// DispatchOutboxUseCase drains pending outbox records in batches. Each batch
// updates room activity counters and marks its records processed.
type DispatchOutboxUseCase struct {
	Repo      repository.ChatRepository
	BatchSize int
	Log       *logger.Logger
}

func NewDispatchOutboxUseCase(repo repository.ChatRepository, batchSize int, log *logger.Logger) *DispatchOutboxUseCase {
	if batchSize <= 0 {
		batchSize = DefaultOutboxBatch
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DispatchOutboxUseCase{Repo: repo, BatchSize: batchSize, Log: log}
}

func (uc *DispatchOutboxUseCase) Execute(ctx context.Context) (*DispatchOutboxOutput, error) {
	out := &DispatchOutboxOutput{}
	for round := 0; round < maxOutboxRounds; round++ {
		n, err := uc.Repo.DispatchOutbox(ctx, uc.BatchSize)
		if err != nil {
			return out, persistence(err)
		}
		out.Processed += n
		if n < uc.BatchSize {
			break
		}
	}

	pending, err := uc.Repo.PendingOutbox(ctx)
	if err != nil {
		return out, persistence(err)
	}
	out.Pending = pending
	if pending > 0 {
		uc.Log.Warn("outbox lagging", "pending", pending, "processed", out.Processed)
	} else if out.Processed > 0 {
		uc.Log.Debug("outbox dispatched", "processed", out.Processed)
	}
	return out, nil
}

// PruneDeliveriesUseCase deletes delivery receipts older than the retention TTL.
type PruneDeliveriesUseCase struct {
	Repo repository.ChatRepository
	TTL  time.Duration
	Now  func() time.Time
	Log  *logger.Logger
}

func NewPruneDeliveriesUseCase(repo repository.ChatRepository, ttl time.Duration, log *logger.Logger) *PruneDeliveriesUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PruneDeliveriesUseCase{Repo: repo, TTL: ttl, Now: time.Now, Log: log}
}

func (uc *PruneDeliveriesUseCase) Execute(ctx context.Context) (int64, error) {
	if uc.TTL <= 0 {
		return 0, nil
	}
	n, err := uc.Repo.PruneDeliveries(ctx, uc.Now().Add(-uc.TTL))
	if err != nil {
		return 0, persistence(err)
	}
	if n > 0 {
		uc.Log.Info("delivery receipts pruned", "count", n)
	}
	return n, nil
}
