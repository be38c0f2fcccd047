package chat

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

const (
	MaxRoomIDLength = 64
	MaxNameLength   = 64
)

var roomIDPattern = regexp.MustCompile(`^[\w\-:.]{1,64}$`)

// Room is a named channel grouping members and an ordered message history.
type Room struct {
	ID            string     `db:"id" json:"id"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	LastMessageAt *time.Time `db:"last_message_at" json:"lastMessageAt,omitempty"`
	MessageCount  int64      `db:"message_count" json:"messageCount"`
}

// Membership authorizes a user to join and post in a room.
type Membership struct {
	RoomID   string    `db:"room_id" json:"roomId"`
	UserID   string    `db:"user_id" json:"userId"`
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
}

// Identity is the authenticated principal bound to a connection.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ValidateRoomID checks the room id charset and length.
func ValidateRoomID(id string) error {
	if !roomIDPattern.MatchString(id) {
		return appErrors.ErrInvalidRoomID
	}
	return nil
}

// NormalizeName trims name and falls back to fallback when empty.
func NormalizeName(name, fallback string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		n = strings.TrimSpace(fallback)
	}
	if n == "" || utf8.RuneCountInString(n) > MaxNameLength {
		return "", appErrors.ErrInvalidDisplayName
	}
	return n, nil
}
