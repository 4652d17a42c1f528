package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/devtrack/internal/store"
)

// ============================================================
// Sessions
// ============================================================

func (s *Server) handleActiveSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Store().ActiveSessions())
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	date, err := requireDate(r, "date")
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Store().SessionsForDate(date))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in store.Session
	if err := decode(r, &in); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateSession(in); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.StartSession(in))
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	var p store.SessionPatch
	if err := decode(r, &p); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateSessionPatch(p); err != nil {
		s.fail(w, err)
		return
	}
	sess, err := s.tracker.UpdateSession(id, p)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// ============================================================
// Commits
// ============================================================

// handleCommits serves a range when startDate and endDate are both given,
// otherwise a single date.
func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("startDate") != "" && q.Get("endDate") != "" {
		start, err := requireDate(r, "startDate")
		if err != nil {
			s.fail(w, err)
			return
		}
		end, err := requireDate(r, "endDate")
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.tracker.Store().CommitsForDateRange(start, end))
		return
	}
	if q.Get("date") == "" {
		s.fail(w, invalid("date or startDate and endDate parameters are required"))
		return
	}
	date, err := requireDate(r, "date")
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Store().CommitsForDate(date))
}

func (s *Server) handleCreateCommit(w http.ResponseWriter, r *http.Request) {
	var in store.Commit
	if err := decode(r, &in); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateCommit(in); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.LogCommit(in))
}

// ============================================================
// Tasks
// ============================================================

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	date, err := requireDate(r, "date")
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Store().TasksForDate(date))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in taskInput
	if err := decode(r, &in); err != nil {
		s.fail(w, err)
		return
	}
	if err := required("title", in.Title); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.AddTask(in.Title, in.Description, in.Completed))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	var p store.TaskPatch
	if err := decode(r, &p); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateTaskPatch(p); err != nil {
		s.fail(w, err)
		return
	}
	task, err := s.tracker.UpdateTask(id, p)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ============================================================
// Goals and activities
// ============================================================

// handleGoals answers null for a day without goals.
func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	date, err := requireDate(r, "date")
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Store().GoalsForDate(date))
}

func (s *Server) handleSetGoals(w http.ResponseWriter, r *http.Request) {
	var in store.Goals
	if err := decode(r, &in); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateGoals(in); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.SetGoals(in))
}

const defaultActivityLimit = 10

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(w, invalid("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.tracker.Store().RecentActivities(limit))
}

// ============================================================
// Git and breaks
// ============================================================

func (s *Server) handleGitSync(w http.ResponseWriter, r *http.Request) {
	var in store.GitSync
	if err := decode(r, &in); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateGitSync(in); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.SyncGit(in))
}

func (s *Server) handleGitSyncs(w http.ResponseWriter, r *http.Request) {
	date, err := requireDate(r, "date")
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Store().GitSyncsForDate(date))
}

func (s *Server) handleStartBreak(w http.ResponseWriter, r *http.Request) {
	var in store.Break
	if err := decode(r, &in); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateBreak(in); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.StartBreak(in))
}

// handleEndBreak answers null when no break was active. A missing endTime
// means now.
func (s *Server) handleEndBreak(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EndTime *time.Time `json:"endTime"`
	}
	if err := decode(r, &body); err != nil {
		s.fail(w, err)
		return
	}
	end := s.tracker.Store().Now()
	if body.EndTime != nil {
		end = *body.EndTime
	}
	writeJSON(w, http.StatusOK, s.tracker.EndBreak(end))
}

func (s *Server) handleActiveBreaks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Store().ActiveBreaks())
}

func (s *Server) handleBreaks(w http.ResponseWriter, r *http.Request) {
	date, err := requireDate(r, "date")
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Store().BreaksForDate(date))
}

// ============================================================
// Issues, metrics and file changes
// ============================================================

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Store().Issues())
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var in store.Issue
	if err := decode(r, &in); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateIssue(in); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.ReportIssue(in))
}

func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	var p store.IssuePatch
	if err := decode(r, &p); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateIssuePatch(p); err != nil {
		s.fail(w, err)
		return
	}
	is, err := s.tracker.UpdateIssue(id, p)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, is)
}

func (s *Server) handleRecordMetrics(w http.ResponseWriter, r *http.Request) {
	var in store.MetricsInput
	if err := decode(r, &in); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateMetrics(in); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.RecordMetrics(in))
}

// handleFileChanges prefers sessionId over date.
func (s *Server) handleFileChanges(w http.ResponseWriter, r *http.Request) {
	if raw := strings.TrimSpace(r.URL.Query().Get("sessionId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.fail(w, invalid("invalid sessionId %q", raw))
			return
		}
		writeJSON(w, http.StatusOK, s.tracker.Store().FileChangesForSession(id))
		return
	}
	if r.URL.Query().Get("date") == "" {
		s.fail(w, invalid("date or sessionId parameter is required"))
		return
	}
	date, err := requireDate(r, "date")
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Store().FileChangesForDate(date))
}

func (s *Server) handleCreateFileChange(w http.ResponseWriter, r *http.Request) {
	var in store.FileChange
	if err := decode(r, &in); err != nil {
		s.fail(w, err)
		return
	}
	if err := validateFileChange(in); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.RecordFileChange(in))
}
