// Package config loads battle-sim settings from YAML and the
// environment.
package config

import (
	"fmt"
	"strings"

	"github.com/magefree/battle-sim-go/internal/game/mods"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// BATTLESIM_BATTLE_SEED.
const EnvPrefix = "BATTLESIM"

// Config is the full application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Battle  BattleConfig  `mapstructure:"battle"`
	Data    DataConfig    `mapstructure:"data"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// LoggingConfig selects the log level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BattleConfig holds defaults for new battles.
type BattleConfig struct {
	Format     string `mapstructure:"format"`
	Seed       uint64 `mapstructure:"seed"`
	MaxTurns   int    `mapstructure:"max_turns"`
	StageTrace bool   `mapstructure:"stage_trace"`
}

// DataConfig points at the data set. An empty DexPath uses the embedded
// data.
type DataConfig struct {
	DexPath string `mapstructure:"dex_path"`
}

// ReplayConfig controls replay recording.
type ReplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("battle.format", mods.DefaultFormat)
	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.max_turns", 1000)
	v.SetDefault("battle.stage_trace", false)

	v.SetDefault("data.dex_path", "")

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.dir", "replays")
}

// Load reads the YAML file at path, if any, and applies BATTLESIM_*
// environment overrides on top of the defaults. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no battle could run with.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	if !mods.HasFormat(c.Battle.Format) {
		return fmt.Errorf("battle.format: unknown format %q (known: %s)",
			c.Battle.Format, strings.Join(mods.FormatIDs(), ", "))
	}
	if c.Battle.MaxTurns <= 0 {
		return fmt.Errorf("battle.max_turns: must be positive, got %d", c.Battle.MaxTurns)
	}
	if c.Replay.Enabled && c.Replay.Dir == "" {
		return fmt.Errorf("replay.dir: required when replays are enabled")
	}
	return nil
}
