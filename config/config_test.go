package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "relist.db", cfg.DBPath)
	assert.False(t, cfg.Production)
	assert.Equal(t, 1.0, cfg.VisionRPS)
	assert.Equal(t, 2, cfg.VisionBurst)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RELIST_ADDR", ":9000")
	t.Setenv("RELIST_ENV", "production")
	t.Setenv("RELIST_DB_PATH", "/tmp/custom.db")
	t.Setenv("VISION_RPS", "2.5")
	t.Setenv("VISION_BURST", "5")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Addr)
	assert.True(t, cfg.Production)
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, 2.5, cfg.VisionRPS)
	assert.Equal(t, 5, cfg.VisionBurst)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("VISION_RPS", "not-a-number")
	t.Setenv("VISION_BURST", "-3")

	cfg := Load()

	assert.Equal(t, 1.0, cfg.VisionRPS)
	assert.Equal(t, 2, cfg.VisionBurst)
}
