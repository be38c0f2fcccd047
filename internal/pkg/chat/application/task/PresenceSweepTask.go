package task

import (
	"context"
	"time"

	qport "github.com/Akhielesh/secure-chat/internal/infrastructure/queue/port"
)

// PresenceSweepTaskType is the queue task name for pruning stale presence in every room.
const PresenceSweepTaskType = "presence:sweep"

// Sweeper prunes stale presence entries. presence.Tracker implements it.
type Sweeper interface {
	GlobalSweep(ctx context.Context) (int, error)
}

func RegisterPresenceSweepTask(srv qport.Server, sweeper Sweeper) {
	srv.Register(PresenceSweepTaskType, func(ctx context.Context, _ qport.Task) error {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		_, err := sweeper.GlobalSweep(ctx)
		return err
	})
}
