package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhielesh/secure-chat/internal/config"
)

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := New(zerolog.New(&buf)).With("component", "gateway")

	log.Error("send failed", "roomId", "general", "err", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "send failed", entry["message"])
	assert.Equal(t, "gateway", entry["component"])
	assert.Equal(t, "general", entry["roomId"])
	assert.Equal(t, "boom", entry["err"])
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := &config.Config{Logger: config.LoggerMode{Level: "loud"}}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_Defaults(t *testing.T) {
	l, err := NewLogger(nil)
	require.NoError(t, err)
	assert.NotNil(t, l)
}
