// Package config loads devtrack settings from a YAML file and DEVTRACK_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// DataDir holds backups, daily snapshots, CSV exports and the TUI log.
	DataDir string `mapstructure:"data_dir"`

	// PrefsPath is the SQLite preferences database.
	PrefsPath string `mapstructure:"prefs_path"`

	// Listen is the HTTP address used by serve.
	Listen string `mapstructure:"listen"`

	LogLevel string `mapstructure:"log_level"`

	// SnapshotInterval is how often the maintenance loop writes the daily
	// snapshot and prunes old backups. Zero disables the loop.
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`

	// RestoreOnStart imports the latest backup or snapshot at start-up.
	RestoreOnStart bool `mapstructure:"restore_on_start"`
}

// Dir returns ~/.config/devtrack, or the working directory when the home
// directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "devtrack")
}

// DefaultPath returns ~/.config/devtrack/config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", filepath.Join(Dir(), "data"))
	v.SetDefault("prefs_path", filepath.Join(Dir(), "prefs.db"))
	v.SetDefault("listen", "127.0.0.1:5000")
	v.SetDefault("log_level", "info")
	v.SetDefault("snapshot_interval", time.Hour)
	v.SetDefault("restore_on_start", true)
}

// Load reads the YAML file at path. A missing file is not an error; the
// defaults and environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("devtrack")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if strings.TrimSpace(c.PrefsPath) == "" {
		errs = append(errs, errors.New("prefs_path must not be empty"))
	}
	if strings.TrimSpace(c.Listen) == "" {
		errs = append(errs, errors.New("listen must not be empty"))
	}
	if c.SnapshotInterval < 0 {
		errs = append(errs, fmt.Errorf("snapshot_interval must not be negative, got %s", c.SnapshotInterval))
	}
	return errors.Join(errs...)
}

// LogPath is where the terminal UI writes its log.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "devtrack.log")
}
