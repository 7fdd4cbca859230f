package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/brandbot/internal/db"
	"github.com/jonathan/brandbot/internal/server/middleware"
)

// handleListRuns lists the caller's recent runs, optionally filtered by
// brief_id and status.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.writeError(w, &ErrUnavailable{Feature: "run history"})
		return
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filters := db.RunFilters{UserID: &userID, Status: r.URL.Query().Get("status")}
	if v := r.URL.Query().Get("brief_id"); v != "" {
		briefID, err := uuid.Parse(v)
		if err != nil {
			s.writeError(w, &ErrValidation{Field: "brief_id", Message: "must be a UUID"})
			return
		}
		filters.BriefID = &briefID
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 200 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be between 1 and 200"})
			return
		}
		filters.Limit = limit
	}

	runs, err := s.runs.ListRuns(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}
