package task

import (
	"time"

	qport "github.com/Akhielesh/secure-chat/internal/infrastructure/queue/port"
)

const queueName = "chat"

// Intervals configures how often each periodic task runs. Zero disables a task.
type Intervals struct {
	OutboxDispatch time.Duration
	PresenceSweep  time.Duration
	ReceiptPrune   time.Duration
}

// SchedulePeriodic registers every periodic task with the scheduler. Each
// enqueue is unique for its interval so replicas do not pile up duplicates.
func SchedulePeriodic(s qport.Scheduler, iv Intervals) error {
	entries := []struct {
		taskType string
		every    time.Duration
	}{
		{OutboxDispatchTaskType, iv.OutboxDispatch},
		{PresenceSweepTaskType, iv.PresenceSweep},
		{ReceiptPruneTaskType, iv.ReceiptPrune},
	}
	for _, e := range entries {
		if e.every <= 0 {
			continue
		}
		_, err := s.Every(e.every, qport.Task{Type: e.taskType}, qport.EnqueueOption{
			Queue:     queueName,
			MaxRetry:  1,
			UniqueTTL: e.every,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
