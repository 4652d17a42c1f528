package backup

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/devtrack/internal/store"
)

func newTestManager(t *testing.T, now time.Time) *Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(t.TempDir(), logger, WithClock(func() time.Time { return now }))
}

func sampleSnapshot() store.Snapshot {
	s := store.New(store.WithLocation(time.UTC))
	s.CreateSession(store.Session{ProjectName: "devtrack"})
	s.CreateTask("write tests", nil, false)
	s.CreateActivity(store.ActivityTask, "Added task: write tests")
	return s.Export()
}

// ============================================================
// Backups
// ============================================================

func TestSaveAndLoadBackup(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 30, 5, 0, time.Local)
	m := newTestManager(t, now)

	path, err := m.SaveBackup(sampleSnapshot())
	if err != nil {
		t.Fatalf("SaveBackup: %v", err)
	}
	if filepath.Base(path) != "devtrack_backup_2024-01-15_09-30-05.json" {
		t.Fatalf("unexpected file name %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"sessions\"") {
		t.Fatal("backup should be indented with two spaces")
	}

	snap, err := m.LoadBackup(filepath.Base(path))
	if err != nil {
		t.Fatalf("LoadBackup: %v", err)
	}
	if snap.Version != store.SnapshotVersion {
		t.Fatalf("version = %q", snap.Version)
	}
	if !snap.ExportedAt.Equal(now) {
		t.Fatalf("exportedAt = %v, want %v", snap.ExportedAt, now)
	}
	if len(snap.Sessions) != 1 || len(snap.Tasks) != 1 || len(snap.Activities) != 1 {
		t.Fatalf("unexpected counts: %v", snap.Counts())
	}
}

func TestSaveBackupCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	m := New(dir, nil)

	if _, err := m.SaveBackup(sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("data dir not created: %v", err)
	}
}

func TestLoadBackupRejectsPaths(t *testing.T) {
	m := newTestManager(t, time.Now())
	for _, name := range []string{"", "..", "../secret.json", "a/b.json", `a\b.json`} {
		if _, err := m.LoadBackup(name); !errors.Is(err, ErrBadName) {
			t.Fatalf("LoadBackup(%q) err = %v, want ErrBadName", name, err)
		}
	}
}

func TestLoadBackupMissing(t *testing.T) {
	m := newTestManager(t, time.Now())
	_, err := m.LoadBackup("devtrack_backup_2020-01-01_00-00-00.json")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadBackupInvalid(t *testing.T) {
	m := newTestManager(t, time.Now())
	name := "devtrack_backup_2024-01-01_00-00-00.json"
	if err := os.WriteFile(filepath.Join(m.Dir(), name), []byte(`{"sessions":[{"id":0}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := m.LoadBackup(name); !errors.Is(err, store.ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestListBackupsNewestFirst(t *testing.T) {
	m := newTestManager(t, time.Now())
	for _, n := range []string{
		"devtrack_backup_2024-01-02_00-00-00.json",
		"devtrack_backup_2024-01-10_00-00-00.json",
		"devtrack_backup_2024-01-05_00-00-00.json",
		"daily_snapshot_2024-01-03.json",
		"devtrack_sessions_2024-01-03_00-00-00.csv",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(m.Dir(), n), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := m.ListBackups()
	want := []string{
		"devtrack_backup_2024-01-10_00-00-00.json",
		"devtrack_backup_2024-01-05_00-00-00.json",
		"devtrack_backup_2024-01-02_00-00-00.json",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("ListBackups = %v, want %v", got, want)
	}
	if snaps := m.ListDailySnapshots(); len(snaps) != 1 || snaps[0] != "daily_snapshot_2024-01-03.json" {
		t.Fatalf("ListDailySnapshots = %v", snaps)
	}
}

func TestListBackupsUnreadableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	m := New(file, slog.New(slog.NewTextHandler(io.Discard, nil)))

	got := m.ListBackups()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %#v", got)
	}
}

// ============================================================
// Daily snapshots
// ============================================================

func TestDailySnapshotOverwrites(t *testing.T) {
	now := time.Date(2024, 1, 15, 8, 0, 0, 0, time.Local)
	m := newTestManager(t, now)

	first, err := m.SaveDailySnapshot(store.Snapshot{Version: store.SnapshotVersion})
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.SaveDailySnapshot(sampleSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if first != second || filepath.Base(first) != "daily_snapshot_2024-01-15.json" {
		t.Fatalf("paths differ: %q %q", first, second)
	}

	snap, err := m.LoadBackup(filepath.Base(second))
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Sessions) != 1 {
		t.Fatal("second snapshot should have replaced the first")
	}
}

func TestLatestSnapshot(t *testing.T) {
	now := time.Date(2024, 1, 15, 8, 0, 0, 0, time.Local)
	m := newTestManager(t, now)

	if m.LatestSnapshot() != nil {
		t.Fatal("expected nil with no files")
	}

	if _, err := m.SaveDailySnapshot(store.Snapshot{Version: store.SnapshotVersion}); err != nil {
		t.Fatal(err)
	}
	latest := m.LatestSnapshot()
	if latest == nil || len(latest.Sessions) != 0 {
		t.Fatalf("expected the daily snapshot, got %+v", latest)
	}

	if _, err := m.SaveBackup(sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	latest = m.LatestSnapshot()
	if latest == nil || len(latest.Sessions) != 1 {
		t.Fatalf("expected the backup, got %+v", latest)
	}
}

func TestLatestSnapshotCorrupt(t *testing.T) {
	m := newTestManager(t, time.Now())
	if err := os.WriteFile(filepath.Join(m.Dir(), "devtrack_backup_2024-01-01_00-00-00.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if m.LatestSnapshot() != nil {
		t.Fatal("expected nil for an unreadable snapshot")
	}
}

func TestFiles(t *testing.T) {
	m := newTestManager(t, time.Date(2024, 1, 15, 8, 0, 0, 0, time.Local))
	if _, err := m.SaveBackup(sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SaveDailySnapshot(sampleSnapshot()); err != nil {
		t.Fatal(err)
	}

	files := m.Files()
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Kind != "backup" || files[1].Kind != "snapshot" {
		t.Fatalf("unexpected kinds: %+v", files)
	}
	if files[0].Size == 0 {
		t.Fatal("size should be set")
	}
}

// ============================================================
// Cleanup
// ============================================================

func writeBackups(t *testing.T, m *Manager, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		name := filepath.Join(m.Dir(), "devtrack_backup_2024-01-0"+string(rune('1'+i))+"_00-00-00.json")
		if err := os.WriteFile(name, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDeleteOldBackupsZeroDeletesAll(t *testing.T) {
	m := New(t.TempDir(), nil)
	writeBackups(t, m, 3)
	if err := os.WriteFile(filepath.Join(m.Dir(), "daily_snapshot_2024-01-01.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if n := m.DeleteOldBackups(0); n != 3 {
		t.Fatalf("deleted %d, want 3", n)
	}
	if len(m.ListBackups()) != 0 {
		t.Fatal("backups remain")
	}
	if len(m.ListDailySnapshots()) != 1 {
		t.Fatal("daily snapshots should not be deleted")
	}
}

func TestDeleteOldBackupsKeepsFresh(t *testing.T) {
	m := New(t.TempDir(), nil)
	writeBackups(t, m, 3)

	if n := m.DeleteOldBackups(3650); n != 0 {
		t.Fatalf("deleted %d, want 0", n)
	}
	if len(m.ListBackups()) != 3 {
		t.Fatal("fresh backups were deleted")
	}
}

func TestDeleteOldBackupsByModTime(t *testing.T) {
	m := New(t.TempDir(), nil)
	writeBackups(t, m, 2)
	old := filepath.Join(m.Dir(), "devtrack_backup_2024-01-01_00-00-00.json")
	past := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	if n := m.DeleteOldBackups(30); n != 1 {
		t.Fatalf("deleted %d, want 1", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("old backup should be gone")
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSVQuotesCommas(t *testing.T) {
	rows := []struct {
		A int    `json:"a"`
		B string `json:"b"`
	}{{A: 1, B: "x,y"}}

	data, err := ToCSV(rows)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a,b\n1,\"x,y\"" {
		t.Fatalf("got %q", data)
	}
}

func TestToCSVEmpty(t *testing.T) {
	data, err := ToCSV([]store.Task{})
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Fatalf("expected no output, got %q", data)
	}
}

func TestToCSVValues(t *testing.T) {
	rows := []map[string]any{
		{"name": `say "hi", then go`, "none": nil, "ok": true, "plain": `a "b"`},
	}
	data, err := ToCSV(rows)
	if err != nil {
		t.Fatal(err)
	}
	want := "name,none,ok,plain\n\"say \"\"hi\"\", then go\",,true,a \"b\""
	if string(data) != want {
		t.Fatalf("got %q, want %q", data, want)
	}
}

func TestSaveCSVExportTasks(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	m := newTestManager(t, now)
	s := store.New(store.WithClock(func() time.Time { return now }))
	s.CreateTask("one, two", nil, false)
	s.CreateTask("three", nil, true)

	path, err := m.SaveCSVExport(s.TasksForDate("2024-01-15"), "tasks")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(path), "devtrack_tasks_2024-01-15_") {
		t.Fatalf("unexpected name %q", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("export should be valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	header := strings.Join(records[0], ",")
	if header != "id,title,description,completed,completedAt,timestamp" {
		t.Fatalf("header = %q", header)
	}
	if records[1][1] != "one, two" {
		t.Fatalf("title = %q", records[1][1])
	}
	if records[2][3] != "true" || records[2][4] == "" {
		t.Fatalf("completed row = %v", records[2])
	}
}

func TestSaveCSVExportEmptyFile(t *testing.T) {
	m := newTestManager(t, time.Now())
	path, err := m.SaveCSVExport([]store.Commit{}, "commits")
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected empty file, got %d bytes", info.Size())
	}
}

func TestSaveCSVExportBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	m := New(file, nil)
	if _, err := m.SaveCSVExport([]store.Task{}, "tasks"); err == nil {
		t.Fatal("expected error for bad dir")
	}
}
