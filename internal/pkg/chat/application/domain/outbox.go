package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const OutboxKindMessageSent = "message_sent"

// OutboxRecord is pending work written in the same transaction as its triggering message.
type OutboxRecord struct {
	ID          string     `db:"id"`
	Kind        string     `db:"kind"`
	Payload     []byte     `db:"payload"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}

// MessageSentPayload is the payload of a message_sent outbox record.
type MessageSentPayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	TS        int64  `json:"ts"`
}

// NewMessageSentRecord builds the outbox record for a freshly persisted message.
func NewMessageSentRecord(m Message) (OutboxRecord, error) {
	payload, err := json.Marshal(MessageSentPayload{
		MessageID: m.ID,
		RoomID:    m.RoomID,
		UserID:    m.UserID,
		TS:        m.TS,
	})
	if err != nil {
		return OutboxRecord{}, err
	}
	return OutboxRecord{
		ID:        uuid.NewString(),
		Kind:      OutboxKindMessageSent,
		Payload:   payload,
		CreatedAt: time.UnixMilli(m.TS),
	}, nil
}
