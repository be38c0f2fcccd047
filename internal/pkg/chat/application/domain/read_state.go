package chat

import "time"

// ReadState is a user's read watermark in a room. LastReadTS never decreases.
type ReadState struct {
	RoomID            string    `db:"room_id" json:"roomId"`
	UserID            string    `db:"user_id" json:"userId"`
	LastReadTS        int64     `db:"last_read_ts" json:"lastReadTs"`
	LastReadMessageID string    `db:"last_read_message_id" json:"lastReadMessageId"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}
