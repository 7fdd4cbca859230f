package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/brandbot/internal/gate"
	"github.com/jonathan/brandbot/internal/orchestrator"
	"github.com/jonathan/brandbot/internal/server/middleware"
)

const heartbeatInterval = 15 * time.Second

// StartGenerationResponse is returned when a run is accepted.
type StartGenerationResponse struct {
	RunID  string              `json:"runId"`
	Status orchestrator.Status `json:"status"`
	Tier   string              `json:"tier"`
	Limit  int                 `json:"limit"`
}

// handleStartGeneration starts a run for the brief under the caller's tier.
func (s *Server) handleStartGeneration(w http.ResponseWriter, r *http.Request) {
	brief, userID, err := s.loadBrief(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := brief.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	tier, err := gate.ParseTier(principal.GetTier())
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "tier", Message: err.Error()})
		return
	}

	sess := s.sessionFor(brief, userID)
	sess.setTier(tier)
	runID, err := sess.orch.Start(r.Context(), brief, tier.Limit())
	if err != nil {
		var rej *orchestrator.RejectionError
		if errors.As(err, &rej) {
			s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
				"error":  rej.Error(),
				"limit":  rej.Limit,
				"active": rej.Active,
				"tier":   tier.String(),
			})
			return
		}
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusAccepted, StartGenerationResponse{
		RunID:  runID.String(),
		Status: orchestrator.StatusProcessing,
		Tier:   tier.String(),
		Limit:  tier.Limit(),
	})
}

// handleGetGeneration returns the current orchestrator state for the brief.
func (s *Server) handleGetGeneration(w http.ResponseWriter, r *http.Request) {
	brief, _, err := s.loadBrief(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess := s.existingSession(brief.ID)
	if sess == nil {
		s.jsonResponse(w, http.StatusOK, orchestrator.State{
			Status: orchestrator.StatusIdle,
			Brief:  brief,
			Logs:   []orchestrator.LogEntry{},
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.orch.Snapshot())
}

// handleGenerationAction applies cancel, pause or resume.
func (s *Server) handleGenerationAction(w http.ResponseWriter, r *http.Request) {
	brief, _, err := s.loadBrief(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	action := r.PathValue("action")
	if action != "cancel" && action != "pause" && action != "resume" {
		s.writeError(w, &ErrValidation{Field: "action", Message: "must be cancel, pause or resume"})
		return
	}

	sess := s.existingSession(brief.ID)
	if sess == nil {
		s.writeError(w, &orchestrator.TransitionError{From: orchestrator.StatusIdle, To: targetStatus(action)})
		return
	}

	switch action {
	case "cancel":
		err = sess.orch.Cancel()
	case "pause":
		err = sess.orch.Pause()
	case "resume":
		err = sess.orch.Resume()
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.orch.Snapshot())
}

func targetStatus(action string) orchestrator.Status {
	switch action {
	case "cancel":
		return orchestrator.StatusCancelled
	case "pause":
		return orchestrator.StatusPaused
	default:
		return orchestrator.StatusProcessing
	}
}

// handleGenerationEvents streams orchestrator events for the brief as SSE.
// The first event is a snapshot of the current state.
func (s *Server) handleGenerationEvents(w http.ResponseWriter, r *http.Request) {
	brief, userID, err := s.loadBrief(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess := s.sessionFor(brief, userID)
	events := make(chan orchestrator.Event, 128)
	unsubscribe := sess.orch.Subscribe(func(ev orchestrator.Event) {
		select {
		case events <- ev:
		default:
			log.Printf("[server] event stream for brief %s is behind, dropping %s event", brief.ID, ev.Kind)
		}
	})
	defer unsubscribe()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sse.WriteEvent("snapshot", sess.orch.Snapshot()); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if err := sse.WriteEvent(string(ev.Kind), ev); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := sse.WriteHeartbeat(); err != nil {
				return
			}
		}
	}
}
