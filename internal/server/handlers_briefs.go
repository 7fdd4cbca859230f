package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/brandbot/internal/briefs"
	"github.com/jonathan/brandbot/internal/orchestrator"
	"github.com/jonathan/brandbot/internal/server/middleware"
	"github.com/jonathan/brandbot/internal/types"
)

// CreateBriefRequest is the body of POST /briefs.
type CreateBriefRequest struct {
	BasicInfo         types.BasicInfo         `json:"basicInfo"`
	VisualPreferences types.VisualPreferences `json:"visualPreferences"`
}

// handleCreateBrief creates a brief owned by the caller.
func (s *Server) handleCreateBrief(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateBriefRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}

	brief := types.NewBrandBrief()
	brief.UserID = &userID
	brief.BasicInfo = req.BasicInfo
	brief.VisualPreferences = req.VisualPreferences
	if err := brief.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.briefs.CreateBrief(r.Context(), brief); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, brief)
}

// handleGetBrief returns one brief.
func (s *Server) handleGetBrief(w http.ResponseWriter, r *http.Request) {
	brief, _, err := s.loadBrief(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, brief)
}

// handleUpdateBriefSection shallow-merges the body into basicInfo or visualPreferences.
func (s *Server) handleUpdateBriefSection(w http.ResponseWriter, r *http.Request) {
	brief, _, err := s.loadBrief(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	section := types.Section(r.PathValue("section"))
	if section != types.SectionBasicInfo && section != types.SectionVisualPreferences {
		s.writeError(w, &ErrValidation{Field: "section", Message: "must be basicInfo or visualPreferences"})
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(fields) == 0 {
		s.writeError(w, &ErrValidation{Field: string(section), Message: "no fields to update"})
		return
	}

	merged := brief.Clone()
	if err := briefs.MergeSection(merged, section, fields); err != nil {
		s.writeError(w, &ErrValidation{Field: string(section), Message: err.Error()})
		return
	}
	if err := merged.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.briefs.UpdateBriefSection(r.Context(), brief.ID, section, fields); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, merged)
}

// handleDeleteBrief deletes a brief, cancelling any run on it first.
func (s *Server) handleDeleteBrief(w http.ResponseWriter, r *http.Request) {
	brief, _, err := s.loadBrief(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.dropSession(brief.ID)
	if err := s.briefs.DeleteBrief(r.Context(), brief.ID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleResetBrief clears generated assets. Not allowed while a run is active.
func (s *Server) handleResetBrief(w http.ResponseWriter, r *http.Request) {
	brief, _, err := s.loadBrief(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess := s.existingSession(brief.ID); sess != nil && sess.orch.Status().Active() {
		s.writeError(w, orchestrator.ErrRunInProgress)
		return
	}

	if err := s.briefs.ResetBriefAssets(r.Context(), brief.ID); err != nil {
		s.writeError(w, err)
		return
	}
	brief.GeneratedAssets = types.GeneratedAssets{}
	s.jsonResponse(w, http.StatusOK, brief)
}

// loadBrief resolves the {id} path value to a brief owned by the caller.
// Briefs owned by other users are reported as not found.
func (s *Server) loadBrief(r *http.Request) (*types.BrandBrief, uuid.UUID, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, uuid.Nil, err
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}

	brief, err := s.briefs.GetBrief(r.Context(), id)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if brief == nil || brief.UserID == nil || *brief.UserID != userID {
		return nil, uuid.Nil, &ErrBriefNotFound{BriefID: id}
	}
	return brief, userID, nil
}
