package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "gen7singles", cfg.Battle.Format)
	assert.Zero(t, cfg.Battle.Seed)
	assert.Equal(t, 1000, cfg.Battle.MaxTurns)
	assert.False(t, cfg.Battle.StageTrace)
	assert.Empty(t, cfg.Data.DexPath)
	assert.False(t, cfg.Replay.Enabled)
	assert.Equal(t, "replays", cfg.Replay.Dir)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
battle:
  format: gen7doubles
  seed: 1234
  max_turns: 50
  stage_trace: true
replay:
  enabled: true
  dir: /tmp/replays
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "gen7doubles", cfg.Battle.Format)
	assert.Equal(t, uint64(1234), cfg.Battle.Seed)
	assert.Equal(t, 50, cfg.Battle.MaxTurns)
	assert.True(t, cfg.Battle.StageTrace)
	assert.True(t, cfg.Replay.Enabled)
	assert.Equal(t, "/tmp/replays", cfg.Replay.Dir)
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "battle:\n  format: gen7doubles\n  seed: 1\n")
	t.Setenv("BATTLESIM_BATTLE_SEED", "99")
	t.Setenv("BATTLESIM_BATTLE_FORMAT", "gen5singles")
	t.Setenv("BATTLESIM_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), cfg.Battle.Seed)
	assert.Equal(t, "gen5singles", cfg.Battle.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Logging: LoggingConfig{Level: "info", Format: "console"},
			Battle:  BattleConfig{Format: "gen7singles", MaxTurns: 100},
			Replay:  ReplayConfig{Dir: "replays"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"unknown encoder", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"unknown battle format", func(c *Config) { c.Battle.Format = "gen1ou" }, "battle.format"},
		{"zero max turns", func(c *Config) { c.Battle.MaxTurns = 0 }, "battle.max_turns"},
		{"negative max turns", func(c *Config) { c.Battle.MaxTurns = -5 }, "battle.max_turns"},
		{"replays without dir", func(c *Config) {
			c.Replay.Enabled = true
			c.Replay.Dir = ""
		}, "replay.dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := writeConfig(t, "battle:\n  max_turns: 0\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "battle.max_turns")
}
