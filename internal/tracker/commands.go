package tracker

import (
	"fmt"
	"time"

	"github.com/sadopc/devtrack/internal/store"
)

func (t *Tracker) StartSession(in store.Session) *store.Session {
	s := t.store.CreateSession(in)
	t.record(store.ActivitySession, "Started coding session: "+s.ProjectName)
	return s
}

// UpdateSession applies p and records the end of the session when p carries
// an end time.
func (t *Tracker) UpdateSession(id int64, p store.SessionPatch) (*store.Session, error) {
	s, err := t.store.UpdateSession(id, p)
	if err != nil {
		return nil, err
	}
	if p.EndTime != nil {
		t.record(store.ActivitySession, "Ended coding session: "+s.ProjectName)
	}
	return s, nil
}

// EndSession closes session id at end, storing its duration in seconds.
func (t *Tracker) EndSession(id int64, end time.Time) (*store.Session, error) {
	cur, err := t.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	secs := int64(end.Sub(cur.StartTime) / time.Second)
	if secs < 0 {
		secs = 0
	}
	inactive := false
	return t.UpdateSession(id, store.SessionPatch{EndTime: &end, Duration: &secs, IsActive: &inactive})
}

func (t *Tracker) LogCommit(in store.Commit) *store.Commit {
	c := t.store.CreateCommit(in)
	t.record(store.ActivityCommit, "Committed: "+c.Message)
	return c
}

func (t *Tracker) AddTask(title string, description *string, completed bool) *store.Task {
	task := t.store.CreateTask(title, description, completed)
	if task.Completed {
		t.record(store.ActivityTask, "Completed task: "+task.Title)
	} else {
		t.record(store.ActivityTask, "Added task: "+task.Title)
	}
	return task
}

func (t *Tracker) UpdateTask(id int64, p store.TaskPatch) (*store.Task, error) {
	task, err := t.store.UpdateTask(id, p)
	if err != nil {
		return nil, err
	}
	if p.Completed != nil && *p.Completed {
		t.record(store.ActivityTask, "Completed task: "+task.Title)
	}
	return task, nil
}

// ToggleTask flips the completed flag of task id.
func (t *Tracker) ToggleTask(id int64) (*store.Task, error) {
	cur, err := t.store.GetTask(id)
	if err != nil {
		return nil, err
	}
	done := !cur.Completed
	return t.UpdateTask(id, store.TaskPatch{Completed: &done})
}

func (t *Tracker) SetGoals(in store.Goals) *store.Goals {
	return t.store.UpsertGoals(in)
}

func (t *Tracker) SyncGit(in store.GitSync) *store.GitSync {
	g := t.store.CreateGitSync(in)
	desc := fmt.Sprintf("Git %s: %s", g.Action, g.Repository)
	if g.CommitMessage != nil && *g.CommitMessage != "" {
		desc += " - " + *g.CommitMessage
	}
	t.record(store.ActivityGit, desc)
	return g
}

func (t *Tracker) StartBreak(in store.Break) *store.Break {
	b := t.store.CreateBreak(in)
	t.record(store.ActivityBreak, fmt.Sprintf("Started %s break (%d minutes)", b.Type, b.Duration))
	return b
}

// EndBreak ends the active break, if any. Nil means nothing was active.
func (t *Tracker) EndBreak(end time.Time) *store.Break {
	b := t.store.EndActiveBreak(end)
	if b != nil {
		t.record(store.ActivityBreak, fmt.Sprintf("Ended %s break", b.Type))
	}
	return b
}

func (t *Tracker) ReportIssue(in store.Issue) *store.Issue {
	is := t.store.CreateIssue(in)
	t.record(store.ActivityIssue, fmt.Sprintf("Created %s: %s", is.Category, is.Title))
	return is
}

func (t *Tracker) UpdateIssue(id int64, p store.IssuePatch) (*store.Issue, error) {
	is, err := t.store.UpdateIssue(id, p)
	if err != nil {
		return nil, err
	}
	if p.Status != nil {
		t.record(store.ActivityIssue, fmt.Sprintf("Updated issue status to %s: %s", *p.Status, is.Title))
	}
	return is, nil
}

func (t *Tracker) RecordMetrics(in store.MetricsInput) *store.Metrics {
	return t.store.UpsertMetrics(in)
}

func (t *Tracker) RecordFileChange(in store.FileChange) *store.FileChange {
	f := t.store.CreateFileChange(in)
	t.record(store.ActivityFile, fmt.Sprintf("%s %s (+%d/-%d)", f.ChangeType, f.FilePath, f.LinesAdded, f.LinesDeleted))
	return f
}
