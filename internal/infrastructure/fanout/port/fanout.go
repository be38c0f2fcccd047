package port

import (
	"context"
	"encoding/json"
)

// Envelope is one room event relayed between processes.
type Envelope struct {
	Origin        string          `json:"origin"`
	RoomID        string          `json:"roomId"`
	Payload       json.RawMessage `json:"payload"`
	ExcludeConnID string          `json:"excludeConnId,omitempty"`
}

// Sink delivers a payload to the local connections of a room.
// realtime.Router satisfies it.
type Sink interface {
	Broadcast(roomID string, payload []byte, excludeConnID string) int
}

// Publisher delivers room events locally and relays them to peer processes.
type Publisher interface {
	// Publish stamps the envelope with this process's origin, delivers it to the
	// local sink, then relays it to peers.
	Publish(ctx context.Context, env Envelope) error

	// Run consumes envelopes from peers until ctx is canceled. Envelopes carrying
	// this process's origin are skipped.
	Run(ctx context.Context) error

	Close() error
}
