package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"
)

// SnapshotVersion tags every exported snapshot.
const SnapshotVersion = "2.0.0"

// ErrInvalidSnapshot is wrapped by every snapshot decoding failure.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is a complete point-in-time copy of every collection.
type Snapshot struct {
	Sessions    []Session    `json:"sessions"`
	Commits     []Commit     `json:"commits"`
	Tasks       []Task       `json:"tasks"`
	Goals       []Goals      `json:"goals"`
	Activities  []Activity   `json:"activities"`
	GitSyncs    []GitSync    `json:"gitSyncs"`
	Breaks      []Break      `json:"breaks"`
	Issues      []Issue      `json:"issues"`
	Metrics     []Metrics    `json:"metrics"`
	FileChanges []FileChange `json:"fileChanges"`
	ExportedAt  time.Time    `json:"exportedAt"`
	Version     string       `json:"version"`
}

// Export copies every collection into a Snapshot. Records are ordered by id.
func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Sessions:    collect(s.sessions, sessionID, nil),
		Commits:     collect(s.commits, commitID, nil),
		Tasks:       collect(s.tasks, taskID, nil),
		Goals:       collect(s.goals, goalsID, nil),
		Activities:  collect(s.activities, activityID, nil),
		GitSyncs:    collect(s.gitSyncs, gitSyncID, nil),
		Breaks:      collect(s.breaks, breakID, nil),
		Issues:      collect(s.issues, issueID, nil),
		Metrics:     collect(s.metrics, metricsID, nil),
		FileChanges: collect(s.fileChanges, fileChangeID, nil),
		ExportedAt:  s.now().UTC(),
		Version:     SnapshotVersion,
	}
}

// Import replaces every collection with the contents of snap, keeping the
// imported ids. Sequences only move forward so later creates never collide
// with imported records.
func (s *Store) Import(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	for _, x := range snap.Sessions {
		s.sessions[x.ID] = x.clone()
		s.sessionSeq.advance(x.ID)
	}
	for _, x := range snap.Commits {
		s.commits[x.ID] = x.clone()
		s.commitSeq.advance(x.ID)
	}
	for _, x := range snap.Tasks {
		s.tasks[x.ID] = x.clone()
		s.taskSeq.advance(x.ID)
	}
	for _, x := range snap.Goals {
		s.goals[x.Date] = x.clone()
		s.goalsSeq.advance(x.ID)
	}
	for _, x := range snap.Activities {
		s.activities[x.ID] = x.clone()
		s.activitySeq.advance(x.ID)
	}
	for _, x := range snap.GitSyncs {
		s.gitSyncs[x.ID] = x.clone()
		s.gitSyncSeq.advance(x.ID)
	}
	for _, x := range snap.Breaks {
		s.breaks[x.ID] = x.clone()
		s.breakSeq.advance(x.ID)
	}
	for _, x := range snap.Issues {
		s.issues[x.ID] = x.clone()
		s.issueSeq.advance(x.ID)
	}
	for _, x := range snap.Metrics {
		s.metrics[x.Date] = x.clone()
		s.metricsSeq.advance(x.ID)
	}
	for _, x := range snap.FileChanges {
		s.fileChanges[x.ID] = x.clone()
		s.fileChangeSeq.advance(x.ID)
	}
}

// Counts returns the number of records per collection, keyed by the
// snapshot field name.
func (snap Snapshot) Counts() map[string]int {
	return map[string]int{
		"sessions":    len(snap.Sessions),
		"commits":     len(snap.Commits),
		"tasks":       len(snap.Tasks),
		"goals":       len(snap.Goals),
		"activities":  len(snap.Activities),
		"gitSyncs":    len(snap.GitSyncs),
		"breaks":      len(snap.Breaks),
		"issues":      len(snap.Issues),
		"metrics":     len(snap.Metrics),
		"fileChanges": len(snap.FileChanges),
	}
}

// DecodeSnapshot reads a snapshot from r, rejecting unknown fields and
// malformed records. Absent collections decode as empty.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Validate checks ids, required fields and enumerated values of every record.
func (snap Snapshot) Validate() error {
	var errs []error
	fail := func(collection string, i int, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s[%d]: %s", collection, i, fmt.Sprintf(format, args...)))
	}
	ids := func(collection string, n int, id func(int) int64) {
		seen := make(map[int64]bool, n)
		for i := 0; i < n; i++ {
			v := id(i)
			if v <= 0 {
				fail(collection, i, "id must be positive, got %d", v)
				continue
			}
			if seen[v] {
				fail(collection, i, "duplicate id %d", v)
			}
			seen[v] = true
		}
	}
	oneOf := func(collection string, i int, field, v string, allowed []string) {
		if !slices.Contains(allowed, v) {
			fail(collection, i, "%s %q is not one of %v", field, v, allowed)
		}
	}
	date := func(collection string, i int, v string) {
		if _, err := time.Parse(DateLayout, v); err != nil {
			fail(collection, i, "date %q is not YYYY-MM-DD", v)
		}
	}

	ids("sessions", len(snap.Sessions), func(i int) int64 { return snap.Sessions[i].ID })
	for i, x := range snap.Sessions {
		if x.ProjectName == "" {
			fail("sessions", i, "projectName is required")
		}
	}
	ids("commits", len(snap.Commits), func(i int) int64 { return snap.Commits[i].ID })
	for i, x := range snap.Commits {
		if x.Repository == "" || x.Message == "" {
			fail("commits", i, "repository and message are required")
		}
	}
	ids("tasks", len(snap.Tasks), func(i int) int64 { return snap.Tasks[i].ID })
	for i, x := range snap.Tasks {
		if x.Title == "" {
			fail("tasks", i, "title is required")
		}
	}
	ids("goals", len(snap.Goals), func(i int) int64 { return snap.Goals[i].ID })
	dates := make(map[string]bool, len(snap.Goals))
	for i, x := range snap.Goals {
		date("goals", i, x.Date)
		if dates[x.Date] {
			fail("goals", i, "duplicate date %s", x.Date)
		}
		dates[x.Date] = true
	}
	ids("activities", len(snap.Activities), func(i int) int64 { return snap.Activities[i].ID })
	for i, x := range snap.Activities {
		oneOf("activities", i, "type", x.Type, ActivityTypes)
	}
	ids("gitSyncs", len(snap.GitSyncs), func(i int) int64 { return snap.GitSyncs[i].ID })
	for i, x := range snap.GitSyncs {
		oneOf("gitSyncs", i, "action", x.Action, GitActions)
	}
	ids("breaks", len(snap.Breaks), func(i int) int64 { return snap.Breaks[i].ID })
	for i, x := range snap.Breaks {
		oneOf("breaks", i, "type", x.Type, BreakTypes)
	}
	ids("issues", len(snap.Issues), func(i int) int64 { return snap.Issues[i].ID })
	for i, x := range snap.Issues {
		if x.Title == "" {
			fail("issues", i, "title is required")
		}
		oneOf("issues", i, "status", x.Status, IssueStatuses)
		oneOf("issues", i, "priority", x.Priority, IssuePriorities)
		oneOf("issues", i, "category", x.Category, IssueCategories)
	}
	ids("metrics", len(snap.Metrics), func(i int) int64 { return snap.Metrics[i].ID })
	dates = make(map[string]bool, len(snap.Metrics))
	for i, x := range snap.Metrics {
		date("metrics", i, x.Date)
		if dates[x.Date] {
			fail("metrics", i, "duplicate date %s", x.Date)
		}
		dates[x.Date] = true
	}
	ids("fileChanges", len(snap.FileChanges), func(i int) int64 { return snap.FileChanges[i].ID })
	for i, x := range snap.FileChanges {
		if x.FilePath == "" {
			fail("fileChanges", i, "filePath is required")
		}
		oneOf("fileChanges", i, "changeType", x.ChangeType, FileChangeTypes)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, errors.Join(errs...))
	}
	return nil
}
