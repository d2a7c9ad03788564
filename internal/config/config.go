// Package config loads process configuration from guardia.yaml and the
// GUARDIA_* environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the resolved process configuration.
type Config struct {
	// DBPath is the SQLite document store location.
	DBPath string `mapstructure:"db_path"`

	// BrokerURL is the websocket pub/sub broker endpoint. Empty disables
	// remote sync (local-only mode).
	BrokerURL string `mapstructure:"broker_url"`

	// InboxDir is the directory the daemon watches for documents to
	// import. Empty disables the inbox.
	InboxDir string `mapstructure:"inbox_dir"`

	// LogFile enables rotating file logging in daemon mode. Empty logs
	// to stderr.
	LogFile string `mapstructure:"log_file"`

	// ZoneTable optionally points at a YAML zone/alias override file for
	// the unit-report parser.
	ZoneTable string `mapstructure:"zone_table"`
}

// Load reads guardia.yaml from the working directory or
// ~/.config/guardia, layered under GUARDIA_* environment variables.
// A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("guardia")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "guardia"))
	}
	v.SetEnvPrefix("GUARDIA")
	v.AutomaticEnv()

	v.SetDefault("db_path", filepath.Join(".guardia", "guardia.db"))
	v.SetDefault("broker_url", "")
	v.SetDefault("inbox_dir", "")
	v.SetDefault("log_file", "")
	v.SetDefault("zone_table", "")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
