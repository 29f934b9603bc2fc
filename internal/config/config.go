package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the runtime configuration shared by all commands.
type Config struct {
	// GameDir is the game installation root. When set, the idx files of
	// the newest build under <GameDir>/bin are used.
	GameDir string `mapstructure:"game_dir"`

	// PkgDir is the directory holding .pkg payload volumes. Empty means
	// the conventional location relative to the idx directory.
	PkgDir string `mapstructure:"pkg_dir"`

	// IdxFiles lists .idx files or directories of them, in patch
	// precedence order. Overrides GameDir detection.
	IdxFiles []string `mapstructure:"idx_files"`

	// Workers bounds extraction concurrency. Zero means the available
	// hardware parallelism.
	Workers int `mapstructure:"workers"`

	// Database is the SQLite file written by the db command.
	Database string `mapstructure:"database"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Load initializes and loads configuration from file.
func Load(cfgFile string) (*Config, error) {
	viper.SetDefault("workers", 0)
	viper.SetDefault("database", "wowspack.db")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName("wowspack")
		viper.SetConfigType("yaml")
	}

	// The config file is optional.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be >= 0, got %d", cfg.Workers)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}

	return &cfg, nil
}
