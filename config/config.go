// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	appName   = "mpvbridge"
	envPrefix = "MPVBRIDGE"
)

// Config holds all application configuration
type Config struct {
	Player    PlayerConfig    `mapstructure:"player"`
	Equalizer EqualizerConfig `mapstructure:"equalizer"`
	State     StateConfig     `mapstructure:"state"`
	Mpris     MprisConfig     `mapstructure:"mpris"`
}

type PlayerConfig struct {
	Volume       int64             `mapstructure:"volume"`
	AudioDevice  string            `mapstructure:"audio_device"`
	PollInterval time.Duration     `mapstructure:"poll_interval"`
	Options      map[string]string `mapstructure:"options"` // passed to mpv before initialization
}

type EqualizerConfig struct {
	Preset  string                     `mapstructure:"preset"`
	Presets map[string]EqualizerPreset `mapstructure:"presets"`
}

// EqualizerPreset maps band frequency in Hz to gain in dB.
type EqualizerPreset struct {
	Preamp float64            `mapstructure:"preamp"`
	Bands  map[string]float64 `mapstructure:"bands"`
}

type StateConfig struct {
	Path string `mapstructure:"path"` // empty keeps state in memory only
}

type MprisConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("player.volume", 100)
	v.SetDefault("player.audio_device", "auto")
	v.SetDefault("player.poll_interval", "200ms")
	v.SetDefault("player.options", map[string]string{})
	v.SetDefault("equalizer.preset", "flat")
	v.SetDefault("state.path", defaultStatePath())
	v.SetDefault("mpris.enabled", false)
}

// defaultStatePath is $XDG_DATA_HOME/mpvbridge/state.db.
func defaultStatePath() string {
	return filepath.Join(xdg.DataHome, appName, "state.db")
}

// Load reads configFile, or looks up mpvbridge.toml in the default
// directories when it is empty. A missing default file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
		v.AddConfigPath("$HOME/.config/mpvbridge")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.State.Path = expandHome(cfg.State.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges viper can't express.
func (c *Config) Validate() error {
	if c.Player.Volume < 0 || c.Player.Volume > 100 {
		return fmt.Errorf("player.volume must be between 0 and 100, got %d", c.Player.Volume)
	}
	if c.Player.PollInterval <= 0 {
		return fmt.Errorf("player.poll_interval must be positive, got %s", c.Player.PollInterval)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
