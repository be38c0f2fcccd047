package adapter

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/fanout/port"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
)

func newOrigin() string {
	return uuid.NewString()
}

func deliver(sink port.Sink, env port.Envelope) int {
	if sink == nil || env.RoomID == "" {
		return 0
	}
	return sink.Broadcast(env.RoomID, env.Payload, env.ExcludeConnID)
}

// receive decodes a relayed envelope and delivers it unless it originated here.
func receive(sink port.Sink, self string, data []byte, log *logger.Logger) {
	var env port.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn("fanout: dropping malformed envelope", "err", err)
		return
	}
	if env.Origin == self {
		return
	}
	deliver(sink, env)
}
