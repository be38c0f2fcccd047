package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

func TestValidateRoomID(t *testing.T) {
	for _, id := range []string{"general", "dm:u1:u2", "team-a.ops", "x"} {
		assert.NoError(t, ValidateRoomID(id), id)
	}
	for _, id := range []string{"", "has space", "slash/room", strings.Repeat("a", 65), "émoji"} {
		assert.ErrorIs(t, ValidateRoomID(id), appErrors.ErrInvalidRoomID, id)
	}
}

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  Alice ", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	name, err = NormalizeName("", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)

	_, err = NormalizeName(" ", "")
	assert.ErrorIs(t, err, appErrors.ErrInvalidDisplayName)

	_, err = NormalizeName(strings.Repeat("n", 65), "")
	assert.ErrorIs(t, err, appErrors.ErrInvalidDisplayName)
}
