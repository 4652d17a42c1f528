package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:5000" {
		t.Fatalf("listen = %q", cfg.Listen)
	}
	if cfg.LogLevel != "info" || cfg.SnapshotInterval != time.Hour || !cfg.RestoreOnStart {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if filepath.Base(cfg.DataDir) != "data" || filepath.Base(cfg.PrefsPath) != "prefs.db" {
		t.Fatalf("unexpected paths: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
data_dir: /tmp/devtrack-data
listen: ":8080"
log_level: debug
snapshot_interval: 15m
restore_on_start: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/tmp/devtrack-data" || cfg.Listen != ":8080" || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.SnapshotInterval != 15*time.Minute {
		t.Fatalf("snapshot_interval = %s", cfg.SnapshotInterval)
	}
	if cfg.RestoreOnStart {
		t.Fatal("restore_on_start should be false")
	}
	if filepath.Base(cfg.PrefsPath) != "prefs.db" {
		t.Fatalf("unset key should keep default, got %q", cfg.PrefsPath)
	}
	if cfg.LogPath() != "/tmp/devtrack-data/devtrack.log" {
		t.Fatalf("log path = %q", cfg.LogPath())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "listen: \":8080\"\n")
	t.Setenv("DEVTRACK_LISTEN", ":9090")
	t.Setenv("DEVTRACK_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9090" || cfg.LogLevel != "warn" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "listen: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestLoadRejectsNegativeInterval(t *testing.T) {
	path := writeConfig(t, "snapshot_interval: -1m\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "snapshot_interval") {
		t.Fatalf("expected snapshot_interval error, got %v", err)
	}
}

func TestValidateEmptyFields(t *testing.T) {
	err := (&Config{}).Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, field := range []string{"data_dir", "prefs_path", "listen"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("missing %s in %v", field, err)
		}
	}
}
