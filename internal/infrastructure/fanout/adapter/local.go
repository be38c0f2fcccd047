package adapter

import (
	"context"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/fanout/port"
)

// LocalFanout delivers to this process only.
type LocalFanout struct {
	origin string
	sink   port.Sink
}

func NewLocalFanout(sink port.Sink) *LocalFanout {
	return &LocalFanout{origin: newOrigin(), sink: sink}
}

var _ port.Publisher = (*LocalFanout)(nil)

func (f *LocalFanout) Publish(_ context.Context, env port.Envelope) error {
	env.Origin = f.origin
	deliver(f.sink, env)
	return nil
}

func (f *LocalFanout) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (f *LocalFanout) Close() error { return nil }
