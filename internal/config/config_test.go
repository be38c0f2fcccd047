package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("jwt.secret", "s3cret")

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.RateLimit.PerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 90*time.Second, cfg.Presence.StaleAfter)
	assert.Equal(t, 60*time.Second, cfg.Presence.SweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.Chat.EditWindow)
	assert.Equal(t, 50, cfg.Chat.RecentLimit)
	assert.Equal(t, []string{"lobby"}, cfg.Chat.PublicRooms)
	assert.Equal(t, "redis", cfg.Fanout.Driver)
}

func TestParseConfig_MissingSecret(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	_, err := ParseConfig(v)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CHAT_JWT_SECRET", "from-env")
	t.Setenv("CHAT_RATELIMIT_BURST", "20")
	t.Setenv("CHAT_SERVER_ALLOWEDORIGINS", "https://a.test, https://b.test")

	v, err := LoadConfig("does-not-exist")
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Server.AllowedOrigins)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " c "}))
	assert.Empty(t, splitList([]string{" , "}))
}
