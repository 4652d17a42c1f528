package tracker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sadopc/devtrack/internal/store"
)

// ErrUnknownExportKind is returned by ExportCSV for an unsupported kind.
var ErrUnknownExportKind = errors.New("invalid export type")

// ExportKinds lists the collections ExportCSV accepts.
var ExportKinds = []string{"sessions", "commits", "tasks", "issues", "activities"}

const csvActivityLimit = 1000

// Backup writes a full snapshot to a new backup file and returns its path.
func (t *Tracker) Backup() (string, error) {
	path, err := t.backups.SaveBackup(t.store.Export())
	if err != nil {
		return "", err
	}
	t.record(store.ActivityBackup, "Created backup: "+filepath.Base(path))
	return path, nil
}

// Restore replaces the store contents with the backup or snapshot called name.
func (t *Tracker) Restore(name string) error {
	snap, err := t.backups.LoadBackup(name)
	if err != nil {
		return err
	}
	t.store.Import(snap)
	t.logger.Info("data restored", "file", name, "counts", snap.Counts())
	t.record(store.ActivityRestore, "Restored data from: "+name)
	return nil
}

// RestoreLatest imports the most recent backup or daily snapshot. It reports
// whether anything was imported.
func (t *Tracker) RestoreLatest() bool {
	snap := t.backups.LatestSnapshot()
	if snap == nil {
		return false
	}
	t.store.Import(*snap)
	t.logger.Info("latest snapshot restored", "exported_at", snap.ExportedAt, "counts", snap.Counts())
	return true
}

// ExportCSV writes one collection to a CSV file. sessions, tasks and issues
// use the day of start; commits use [start, end]; activities ignore both and
// take the latest 1000.
func (t *Tracker) ExportCSV(kind, start, end string) (string, error) {
	var rows any
	switch kind {
	case "sessions":
		rows = t.store.SessionsForDate(start)
	case "commits":
		rows = t.store.CommitsForDateRange(start, end)
	case "tasks":
		rows = t.store.TasksForDate(start)
	case "issues":
		rows = t.store.IssuesForDate(start)
	case "activities":
		rows = t.store.RecentActivities(csvActivityLimit)
	default:
		return "", fmt.Errorf("export %q: %w", kind, ErrUnknownExportKind)
	}
	path, err := t.backups.SaveCSVExport(rows, kind)
	if err != nil {
		return "", err
	}
	t.record(store.ActivityExport, fmt.Sprintf("Exported %s to CSV: %s", kind, filepath.Base(path)))
	return path, nil
}

func (t *Tracker) DailySnapshot() (string, error) {
	return t.backups.SaveDailySnapshot(t.store.Export())
}

func (t *Tracker) CleanupBackups(daysToKeep int) int {
	return t.backups.DeleteOldBackups(daysToKeep)
}

// RunMaintenance saves the daily snapshot and prunes backups older than
// retention days on every tick of interval. A last snapshot is written when
// ctx ends. A non-positive interval returns at once.
func (t *Tracker) RunMaintenance(ctx context.Context, interval time.Duration, retention func() int) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if _, err := t.DailySnapshot(); err != nil {
				t.logger.Error("final snapshot", "error", err)
			}
			return
		case <-ticker.C:
			if _, err := t.DailySnapshot(); err != nil {
				t.logger.Error("daily snapshot", "error", err)
			}
			if n := t.CleanupBackups(retention()); n > 0 {
				t.logger.Info("backups pruned", "count", n)
			}
		}
	}
}
