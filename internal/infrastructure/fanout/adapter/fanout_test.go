package adapter

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nats-io/nats.go"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/fanout/port"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
)

type delivery struct {
	room    string
	payload string
	exclude string
}

type recordingSink struct {
	mu   sync.Mutex
	got  []delivery
	seen chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{seen: make(chan struct{}, 16)}
}

func (s *recordingSink) Broadcast(roomID string, payload []byte, excludeConnID string) int {
	s.mu.Lock()
	s.got = append(s.got, delivery{room: roomID, payload: string(payload), exclude: excludeConnID})
	s.mu.Unlock()
	s.seen <- struct{}{}
	return 1
}

func (s *recordingSink) deliveries() []delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]delivery(nil), s.got...)
}

func waitDelivery(t *testing.T, s *recordingSink) {
	t.Helper()
	select {
	case <-s.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery")
	}
}

func TestLocalFanout_DeliversImmediately(t *testing.T) {
	sink := newRecordingSink()
	f := NewLocalFanout(sink)

	require.NoError(t, f.Publish(context.Background(), port.Envelope{RoomID: "general", Payload: json.RawMessage(`{"type":"message"}`), ExcludeConnID: "c1"}))
	assert.Equal(t, []delivery{{room: "general", payload: `{"type":"message"}`, exclude: "c1"}}, sink.deliveries())
}

func TestRedisFanout_RelaysBetweenProcesses(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sinkA, sinkB := newRecordingSink(), newRecordingSink()
	a := NewRedisFanout(client, "", sinkA, logger.Nop())
	b := NewRedisFanout(client, "", sinkB, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Run(ctx) }()
	go func() { _ = b.Run(ctx) }()
	<-a.Ready()
	<-b.Ready()

	env := port.Envelope{RoomID: "general", Payload: json.RawMessage(`{"type":"typing:state"}`), ExcludeConnID: "c1"}
	require.NoError(t, a.Publish(ctx, env))

	// A delivers locally once and skips its own relayed copy.
	waitDelivery(t, sinkA)
	waitDelivery(t, sinkB)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, sinkA.deliveries(), 1)
	require.Len(t, sinkB.deliveries(), 1)
	assert.Equal(t, delivery{room: "general", payload: `{"type":"typing:state"}`, exclude: "c1"}, sinkB.deliveries()[0])
}

func TestReceive_SkipsOwnAndMalformed(t *testing.T) {
	sink := newRecordingSink()
	receive(sink, "self", []byte(`not json`), logger.Nop())
	receive(sink, "self", []byte(`{"origin":"self","roomId":"r","payload":{}}`), logger.Nop())
	receive(sink, "self", []byte(`{"origin":"peer","roomId":"","payload":{}}`), logger.Nop())
	assert.Empty(t, sink.deliveries())

	receive(sink, "self", []byte(`{"origin":"peer","roomId":"r","payload":{"a":1}}`), logger.Nop())
	assert.Equal(t, []delivery{{room: "r", payload: `{"a":1}`}}, sink.deliveries())
}

func TestNatsFanout_Handle(t *testing.T) {
	sink := newRecordingSink()
	f := NewNatsFanout(nil, "", sink, logger.Nop())
	assert.Equal(t, DefaultNatsSubject, f.subject)

	data, err := json.Marshal(port.Envelope{Origin: "peer", RoomID: "general", Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)
	f.handle(&nats.Msg{Subject: DefaultNatsSubject, Data: data})
	assert.Len(t, sink.deliveries(), 1)

	data, err = json.Marshal(port.Envelope{Origin: f.origin, RoomID: "general", Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)
	f.handle(&nats.Msg{Subject: DefaultNatsSubject, Data: data})
	assert.Len(t, sink.deliveries(), 1)
}
