package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, 50, cfg.Game.TickMs)
	assert.Equal(t, 3.5, cfg.Game.AgentSpeed)
	assert.Equal(t, 15*time.Second, cfg.Game.RespawnDelay)
	assert.Equal(t, 1.0, cfg.Nav.CellSize)
	assert.Equal(t, 20, cfg.Nav.MaxSnapCells)
	assert.Equal(t, 0.5, cfg.Nav.RecomputeSeconds)
	assert.Equal(t, 0.35, cfg.Combat.SightConfirmS)
	assert.Equal(t, 3.0, cfg.Combat.LoseSightS)
	assert.Equal(t, 8.0, cfg.Combat.PreferredRange)
	assert.Equal(t, 2.0, cfg.Combat.RangeBand)
	assert.Equal(t, 0.5, cfg.Combat.RetreatSpeed)
	assert.Equal(t, 20.0, cfg.Security.RateLimitRPS)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 7777
  debug: true
  admin_key: hunter2
game:
  tick_ms: 33
  respawn_delay: 3s
combat:
  preferred_range: 12
  strafe_min_s: 0.5
`))
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "hunter2", cfg.Server.AdminKey)
	assert.Equal(t, 33, cfg.Game.TickMs)
	assert.Equal(t, 3*time.Second, cfg.Game.RespawnDelay)
	assert.Equal(t, 12.0, cfg.Combat.PreferredRange)
	assert.Equal(t, 0.5, cfg.Combat.StrafeMinS)
	// Untouched sections keep their defaults.
	assert.Equal(t, 2.0, cfg.Combat.RangeBand)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
