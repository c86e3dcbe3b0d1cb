package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gridops/gridctl/internal/logger"
)

// Escalation policies applied when a graceful stop exceeds its bound.
const (
	OnTimeoutPrompt = "prompt" // ask interactively whether to SIGKILL
	OnTimeoutFail   = "fail"   // report failure, leave the process running
	OnTimeoutForce  = "force"  // SIGKILL without asking
)

// HistoryConfig selects the lifecycle-event audit sink.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Type    string `toml:"type" mapstructure:"type"` // sqlite | postgres | clickhouse
	DSN     string `toml:"dsn" mapstructure:"dsn"`
}

// Settings is the controller's own configuration, loaded from TOML.
// The managed daemon's config file stays opaque; only its path matters.
type Settings struct {
	Entrypoint        string        `toml:"entrypoint" mapstructure:"entrypoint"`
	ScannerEntrypoint string        `toml:"scanner_entrypoint" mapstructure:"scanner_entrypoint"`
	PIDDir            string        `toml:"pid_dir" mapstructure:"pid_dir"`
	LogDir            string        `toml:"log_dir" mapstructure:"log_dir"`
	SessionPrefix     string        `toml:"session_prefix" mapstructure:"session_prefix"`
	Multiplexer       string        `toml:"multiplexer" mapstructure:"multiplexer"`
	Settle            time.Duration `toml:"settle" mapstructure:"settle"`
	StopWait          time.Duration `toml:"stop_wait" mapstructure:"stop_wait"`
	OnTimeout         string        `toml:"on_timeout" mapstructure:"on_timeout"`
	History           HistoryConfig `toml:"history" mapstructure:"history"`
	Log               logger.Config `toml:"log" mapstructure:"log"`
}

// Defaults returns the settings used when no config file is given.
func Defaults() Settings {
	return Settings{
		Entrypoint:        "python3 run_grid_trading_daemon.py",
		ScannerEntrypoint: "python3 run_volatility_scanner.py",
		PIDDir:            "run",
		LogDir:            "logs",
		SessionPrefix:     "grid_",
		Multiplexer:       "tmux",
		Settle:            2 * time.Second,
		StopWait:          30 * time.Second,
		OnTimeout:         OnTimeoutPrompt,
	}
}

// Load reads settings from a TOML file, filling unset keys with
// defaults. An empty path yields Defaults(). Environment variables with
// the GRIDCTL_ prefix override file values.
func Load(path string) (Settings, error) {
	s := Defaults()
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("GRIDCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	// Relative dirs are anchored at the config file's directory, so a
	// controller invoked from anywhere resolves the same resources.
	base := filepath.Dir(path)
	if s.PIDDir != "" && !filepath.IsAbs(s.PIDDir) {
		s.PIDDir = filepath.Join(base, s.PIDDir)
	}
	if s.LogDir != "" && !filepath.IsAbs(s.LogDir) {
		s.LogDir = filepath.Join(base, s.LogDir)
	}
	return s, s.Validate()
}

// Validate rejects impossible settings early.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Entrypoint) == "" {
		return fmt.Errorf("entrypoint must not be empty")
	}
	if s.Settle < 0 {
		return fmt.Errorf("settle must not be negative")
	}
	if s.StopWait <= 0 {
		return fmt.Errorf("stop_wait must be positive")
	}
	switch s.OnTimeout {
	case OnTimeoutPrompt, OnTimeoutFail, OnTimeoutForce:
	default:
		return fmt.Errorf("on_timeout %q: must be one of prompt, fail, force", s.OnTimeout)
	}
	switch s.History.Type {
	case "", "sqlite", "postgres", "clickhouse":
	default:
		return fmt.Errorf("history type %q: must be one of sqlite, postgres, clickhouse", s.History.Type)
	}
	return nil
}
