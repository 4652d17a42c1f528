package api

import (
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	date, err := requireDate(r, "date")
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Reports().Dashboard(date))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
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
	if err := exportSpan(start, end); err != nil {
		s.fail(w, err)
		return
	}
	out, err := s.tracker.Reports().ExportRange(start, end)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="devtrack-export-%s-to-%s.json"`, start, end))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEnhancedMetrics(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if err := dateField("date", date); err != nil {
		s.fail(w, err)
		return
	}
	m, err := s.tracker.Reports().EnhancedMetrics(date)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

