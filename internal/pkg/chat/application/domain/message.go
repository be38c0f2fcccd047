package chat

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

const (
	MaxTextLength     = 2000
	DefaultEditWindow = 5 * time.Minute
)

// Attachment is media metadata resolved when a message is persisted.
type Attachment struct {
	ID    string `json:"id"`
	Mime  string `json:"mime"`
	Bytes int64  `json:"bytes"`
	URL   string `json:"url"`
}

// Reactions maps an emoji to the sorted ids of users who reacted with it.
type Reactions map[string][]string

// Message is an entry in a room's ordered history.
// Only Text and Edited change after creation.
type Message struct {
	ID          string      `db:"id" json:"id"`
	RoomID      string      `db:"room_id" json:"roomId"`
	UserID      string      `db:"user_id" json:"userId"`
	UserName    string      `db:"user_name" json:"name"`
	Text        string      `db:"text" json:"text"`
	Attachment  *Attachment `db:"-" json:"attachment,omitempty"`
	TS          int64       `db:"ts" json:"ts"`
	Edited      bool        `db:"edited" json:"edited"`
	Reactions   Reactions   `db:"-" json:"reactions"`
	DeliveredBy []string    `db:"-" json:"deliveredBy"`
}

// NewMessage validates the content of an outgoing message.
// Text is trimmed; it may be empty only when an attachment is present.
func NewMessage(m Message) (*Message, error) {
	if m.RoomID == "" || m.UserID == "" {
		return nil, appErrors.InvalidPayload("room and sender are required")
	}

	m.Text = strings.TrimSpace(m.Text)
	if m.Text == "" && m.Attachment == nil {
		return nil, appErrors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(m.Text) > MaxTextLength {
		return nil, appErrors.ErrInvalidText
	}
	if m.Reactions == nil {
		m.Reactions = Reactions{}
	}
	if m.DeliveredBy == nil {
		m.DeliveredBy = []string{}
	}
	return &m, nil
}

// ValidateText trims text and checks it is 1..MaxTextLength characters.
func ValidateText(text string) (string, error) {
	t := strings.TrimSpace(text)
	if t == "" || utf8.RuneCountInString(t) > MaxTextLength {
		return "", appErrors.ErrInvalidText
	}
	return t, nil
}

// CanEdit reports whether requesterID may edit m at now.
func (m *Message) CanEdit(requesterID string, now time.Time, window time.Duration) error {
	if m.UserID != requesterID {
		return appErrors.ErrEditForbidden
	}
	if now.UnixMilli()-m.TS >= window.Milliseconds() {
		return appErrors.ErrEditForbidden
	}
	return nil
}

// CreatedAt returns the server timestamp as time.
func (m *Message) CreatedAt() time.Time {
	return time.UnixMilli(m.TS)
}

// AddReaction records userID under emoji, keeping the set sorted and unique.
func (r Reactions) AddReaction(emoji, userID string) {
	users := r[emoji]
	i := sort.SearchStrings(users, userID)
	if i < len(users) && users[i] == userID {
		return
	}
	users = append(users, "")
	copy(users[i+1:], users[i:])
	users[i] = userID
	r[emoji] = users
}
