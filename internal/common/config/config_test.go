package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Giveaway.SweepInterval)
	assert.Equal(t, 10, cfg.Giveaway.MaxConcurrent)
	assert.Equal(t, "bot:events", cfg.Events.Stream)
	assert.Equal(t, "!", cfg.Events.CommandPrefix)
	assert.Equal(t, "🎉", cfg.Giveaway.EntryEmoji)
}

func TestLoadRequiresBotToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveSweepInterval(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("GIVEAWAY_SWEEP_INTERVAL", "0s")

	_, err := Load()
	assert.ErrorContains(t, err, "GIVEAWAY_SWEEP_INTERVAL")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("GIVEAWAY_SWEEP_INTERVAL", "1s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ADMIN_IDS", "10,20")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Giveaway.SweepInterval)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, []int64{10, 20}, cfg.Telegram.AdminIDs)
}
