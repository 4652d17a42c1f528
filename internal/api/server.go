// Package api serves the tracker over HTTP with a websocket activity feed.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sadopc/devtrack/internal/backup"
	"github.com/sadopc/devtrack/internal/store"
	"github.com/sadopc/devtrack/internal/tracker"
)

type Server struct {
	router  chi.Router
	tracker *tracker.Tracker
	hub     *Hub
	logger  *slog.Logger
}

// NewServer builds the router. hub may be nil, in which case /api/ws is not
// served.
func NewServer(tr *tracker.Tracker, hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:  chi.NewRouter(),
		tracker: tr,
		hub:     hub,
		logger:  logger.With("component", "api"),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/sessions/active", s.handleActiveSessions)
		r.Get("/sessions", s.handleSessions)
		r.Post("/sessions", s.handleCreateSession)
		r.Patch("/sessions/{id}", s.handleUpdateSession)

		r.Get("/commits", s.handleCommits)
		r.Post("/commits", s.handleCreateCommit)

		r.Get("/tasks", s.handleTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Patch("/tasks/{id}", s.handleUpdateTask)

		r.Get("/goals", s.handleGoals)
		r.Post("/goals", s.handleSetGoals)

		r.Get("/activities", s.handleActivities)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/export", s.handleExport)

		r.Post("/git/sync", s.handleGitSync)
		r.Get("/git/syncs", s.handleGitSyncs)

		r.Post("/breaks", s.handleStartBreak)
		r.Post("/breaks/end", s.handleEndBreak)
		r.Get("/breaks/active", s.handleActiveBreaks)
		r.Get("/breaks", s.handleBreaks)

		r.Get("/issues", s.handleIssues)
		r.Post("/issues", s.handleCreateIssue)
		r.Patch("/issues/{id}", s.handleUpdateIssue)

		r.Get("/metrics/enhanced/{date}", s.handleEnhancedMetrics)
		r.Post("/metrics", s.handleRecordMetrics)

		r.Get("/file-changes", s.handleFileChanges)
		r.Post("/file-changes", s.handleCreateFileChange)

		r.Post("/backup", s.handleBackup)
		r.Get("/backups", s.handleListBackups)
		r.Post("/restore/{filename}", s.handleRestore)
		r.Post("/export/csv", s.handleExportCSV)
		r.Post("/daily-snapshot", s.handleDailySnapshot)
		r.Post("/cleanup-backups", s.handleCleanupBackups)

		if s.hub != nil {
			r.Get("/ws", s.hub.HandleWS)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// fail picks the status for err.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var verr *validationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, tracker.ErrUnknownExportKind),
		errors.Is(err, backup.ErrBadName),
		errors.Is(err, store.ErrInvalidSnapshot):
		s.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		s.writeError(w, http.StatusNotFound, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return invalid("malformed JSON body: %v", err)
	}
	return nil
}

// requireDate reads a YYYY-MM-DD query parameter.
func requireDate(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", invalid("%s parameter is required", name)
	}
	if _, err := store.ParseDate(v); err != nil {
		return "", invalid("%s must be YYYY-MM-DD", name)
	}
	return v, nil
}

func urlID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("invalid id %q", raw)
	}
	return id, nil
}

func success(message string, extra map[string]any) map[string]any {
	out := map[string]any{"success": true, "message": message}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
