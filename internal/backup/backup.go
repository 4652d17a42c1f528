// Package backup writes store snapshots and CSV exports to a data directory
// and reads them back.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sadopc/devtrack/internal/store"
)

// DefaultDir is used when no data directory is configured.
const DefaultDir = "./data"

const (
	backupPrefix   = "devtrack_backup_"
	snapshotPrefix = "daily_snapshot_"
	stampLayout    = "2006-01-02_15-04-05"
)

// ErrBadName is returned by LoadBackup for names that are not plain file names.
var ErrBadName = errors.New("invalid backup name")

type Manager struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Manager)

// WithClock replaces time.Now for file name stamps and retention cutoffs.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func New(dir string, logger *slog.Logger, opts ...Option) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{dir: dir, now: time.Now, logger: logger.With("component", "backup")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) ensureDir() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

// SaveBackup writes snap to a new timestamped file and returns its path.
// ExportedAt and Version are set at write time.
func (m *Manager) SaveBackup(snap store.Snapshot) (string, error) {
	now := m.now()
	snap.ExportedAt = now.UTC()
	snap.Version = store.SnapshotVersion
	path := filepath.Join(m.dir, backupPrefix+now.Format(stampLayout)+".json")
	if err := m.writeJSON(path, snap); err != nil {
		return "", fmt.Errorf("save backup: %w", err)
	}
	m.logger.Info("backup saved", "path", path)
	return path, nil
}

// SaveDailySnapshot writes snap to the file for today, replacing any earlier
// snapshot of the same day.
func (m *Manager) SaveDailySnapshot(snap store.Snapshot) (string, error) {
	path := filepath.Join(m.dir, snapshotPrefix+m.now().Format(store.DateLayout)+".json")
	if err := m.writeJSON(path, snap); err != nil {
		return "", fmt.Errorf("save daily snapshot: %w", err)
	}
	m.logger.Debug("daily snapshot saved", "path", path)
	return path, nil
}

func (m *Manager) writeJSON(path string, snap store.Snapshot) error {
	if err := m.ensureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// LoadBackup reads and validates the backup or daily snapshot called name.
func (m *Manager) LoadBackup(name string) (store.Snapshot, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == ".." {
		return store.Snapshot{}, fmt.Errorf("load backup %q: %w", name, ErrBadName)
	}
	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("load backup %q: %w", name, err)
	}
	snap, err := store.DecodeSnapshot(bytes.NewReader(data))
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("load backup %q: %w", name, err)
	}
	return snap, nil
}

// ListBackups returns backup file names, most recent first.
func (m *Manager) ListBackups() []string {
	return m.list(backupPrefix)
}

// ListDailySnapshots returns daily snapshot file names, most recent first.
func (m *Manager) ListDailySnapshots() []string {
	return m.list(snapshotPrefix)
}

// list never fails; an unreadable directory lists as empty.
func (m *Manager) list(prefix string) []string {
	names := []string{}
	if err := m.ensureDir(); err != nil {
		m.logger.Warn("list files", "dir", m.dir, "error", err)
		return names
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.logger.Warn("list files", "dir", m.dir, "error", err)
		return names
	}
	for _, e := range entries {
		n := e.Name()
		if !e.IsDir() && strings.HasPrefix(n, prefix) && strings.HasSuffix(n, ".json") {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	slices.Reverse(names)
	return names
}

// LatestSnapshot loads the file that sorts last among backups and daily
// snapshots. It returns nil when there is none or it cannot be loaded.
func (m *Manager) LatestSnapshot() *store.Snapshot {
	all := append(m.ListBackups(), m.ListDailySnapshots()...)
	if len(all) == 0 {
		return nil
	}
	slices.Sort(all)
	name := all[len(all)-1]
	snap, err := m.LoadBackup(name)
	if err != nil {
		m.logger.Warn("load latest snapshot", "file", name, "error", err)
		return nil
	}
	return &snap
}

// File describes one file in the data directory.
type File struct {
	Name    string
	Kind    string // backup, snapshot
	Size    int64
	ModTime time.Time
}

// Files lists backups followed by daily snapshots, each most recent first.
func (m *Manager) Files() []File {
	var out []File
	add := func(kind string, names []string) {
		for _, n := range names {
			info, err := os.Stat(filepath.Join(m.dir, n))
			if err != nil {
				continue
			}
			out = append(out, File{Name: n, Kind: kind, Size: info.Size(), ModTime: info.ModTime()})
		}
	}
	add("backup", m.ListBackups())
	add("snapshot", m.ListDailySnapshots())
	return out
}

// DeleteOldBackups removes backup files last modified more than daysToKeep
// days ago and returns how many were removed. Daily snapshots are kept.
func (m *Manager) DeleteOldBackups(daysToKeep int) int {
	cutoff := m.now().AddDate(0, 0, -daysToKeep)
	deleted := 0
	for _, name := range m.ListBackups() {
		path := filepath.Join(m.dir, name)
		info, err := os.Stat(path)
		if err != nil {
			m.logger.Warn("stat backup", "file", name, "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			m.logger.Warn("delete backup", "file", name, "error", err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		m.logger.Info("old backups deleted", "count", deleted, "days_to_keep", daysToKeep)
	}
	return deleted
}
