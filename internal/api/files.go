package api

import (
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"
)

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	path, err := s.tracker.Backup()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, success("Backup created successfully", map[string]any{"filepath": path}))
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Backups().ListBackups())
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Restore(chi.URLParam(r, "filename")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, success("Data restored successfully", nil))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type      string `json:"type"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := decode(r, &body); err != nil {
		s.fail(w, err)
		return
	}
	path, err := s.tracker.ExportCSV(body.Type, body.StartDate, body.EndDate)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, success(fmt.Sprintf("%s exported successfully", body.Type), map[string]any{"filepath": path}))
}

func (s *Server) handleDailySnapshot(w http.ResponseWriter, r *http.Request) {
	path, err := s.tracker.DailySnapshot()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, success("Daily snapshot saved", map[string]any{"filepath": path}))
}

const defaultDaysToKeep = 30

func (s *Server) handleCleanupBackups(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DaysToKeep *int `json:"daysToKeep"`
	}
	if err := decode(r, &body); err != nil {
		s.fail(w, err)
		return
	}
	days := defaultDaysToKeep
	if body.DaysToKeep != nil {
		if *body.DaysToKeep < 0 {
			s.fail(w, invalid("daysToKeep must not be negative"))
			return
		}
		days = *body.DaysToKeep
	}
	n := s.tracker.CleanupBackups(days)
	writeJSON(w, http.StatusOK, success(fmt.Sprintf("Cleaned up %d old backups", n), map[string]any{"deletedCount": n}))
}
