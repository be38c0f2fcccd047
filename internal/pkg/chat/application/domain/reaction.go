package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"

	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

const (
	MaxEmojiRunes = 8
	maxEmojiBytes = 32
)

const forbiddenEmojiChars = "\"'\\:`<>"

// Reaction is one user's emoji on a message.
type Reaction struct {
	MessageID string `db:"message_id" json:"messageId"`
	Emoji     string `db:"emoji" json:"emoji"`
	UserID    string `db:"user_id" json:"userId"`
}

// ValidateEmoji accepts short printable tokens only.
func ValidateEmoji(emoji string) error {
	if emoji == "" || len(emoji) > maxEmojiBytes || !utf8.ValidString(emoji) {
		return appErrors.ErrInvalidEmoji
	}
	if utf8.RuneCountInString(emoji) > MaxEmojiRunes {
		return appErrors.ErrInvalidEmoji
	}
	for _, r := range emoji {
		if unicode.IsControl(r) || unicode.IsSpace(r) || strings.ContainsRune(forbiddenEmojiChars, r) {
			return appErrors.ErrInvalidEmoji
		}
	}
	return nil
}
