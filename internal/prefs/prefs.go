// Package prefs keeps user preferences in a small SQLite database.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Prefs struct {
	db *sqlx.DB
}

// Open opens (or creates) the preferences database at path and runs
// migrations.
func Open(path string) (*Prefs, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create prefs directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open prefs database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	p := &Prefs{db: db}
	if err := p.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return p, nil
}

// OpenMemory opens an in-memory database for testing.
func OpenMemory() (*Prefs, error) {
	return Open(":memory:")
}

func (p *Prefs) Close() error {
	return p.db.Close()
}

func (p *Prefs) migrate() error {
	var version int
	if err := p.db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := p.migrateV1(); err != nil {
			return err
		}
	}

	_, err := p.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (p *Prefs) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('break_short_minutes',   '5'),
		('break_long_minutes',    '15'),
		('goal_coding_minutes',   '240'),
		('goal_commits',          '5'),
		('goal_tasks',            '3'),
		('backup_retention_days', '30'),
		('idle_timeout',          '300');
	`
	_, err := p.db.Exec(ddl)
	return err
}

// DefaultPath returns ~/.config/devtrack/prefs.db
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "devtrack", "prefs.db"), nil
}
