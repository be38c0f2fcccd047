package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/fanout/port"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
)

const DefaultNatsSubject = "chat.fanout"

// NatsFanout relays room events over a core NATS subject.
type NatsFanout struct {
	origin  string
	conn    *nats.Conn
	subject string
	sink    port.Sink
	log     *logger.Logger
}

// ConnectNats dials url with bounded reconnects.
func ConnectNats(url string, log *logger.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("secure-chat"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: connect: %w", err)
	}
	return nc, nil
}

func NewNatsFanout(conn *nats.Conn, subject string, sink port.Sink, log *logger.Logger) *NatsFanout {
	if subject == "" {
		subject = DefaultNatsSubject
	}
	return &NatsFanout{origin: newOrigin(), conn: conn, subject: subject, sink: sink, log: log}
}

var _ port.Publisher = (*NatsFanout)(nil)

func (f *NatsFanout) Publish(_ context.Context, env port.Envelope) error {
	env.Origin = f.origin
	deliver(f.sink, env)

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return f.conn.Publish(f.subject, data)
}

func (f *NatsFanout) Run(ctx context.Context) error {
	sub, err := f.conn.Subscribe(f.subject, f.handle)
	if err != nil {
		return fmt.Errorf("nats: subscribe %s: %w", f.subject, err)
	}
	f.log.Info("fanout subscribed", "driver", "nats", "subject", f.subject)
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (f *NatsFanout) handle(msg *nats.Msg) {
	receive(f.sink, f.origin, msg.Data, f.log)
}

func (f *NatsFanout) Close() error {
	return f.conn.Drain()
}
