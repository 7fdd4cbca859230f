package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/brandbot/internal/db"
	"github.com/jonathan/brandbot/internal/gate"
	"github.com/jonathan/brandbot/internal/orchestrator"
	"github.com/jonathan/brandbot/internal/types"
)

const runRecordTimeout = 10 * time.Second

// session is the orchestrator for one brief plus the recorder that mirrors
// its runs into the run store.
type session struct {
	briefID uuid.UUID
	userID  uuid.UUID
	orch    *orchestrator.Orchestrator

	mu   sync.Mutex
	tier gate.Tier // tier of the run most recently started

	sendMu      sync.Mutex // guards sends on records against close
	closed      bool
	records     chan runRecord
	unsubscribe func()
	done        chan struct{}
}

type runRecord struct {
	runID  uuid.UUID
	status orchestrator.Status
	errMsg string
}

// sessionFor returns the session for brief, creating it on first use.
func (s *Server) sessionFor(brief *types.BrandBrief, userID uuid.UUID) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[brief.ID]; ok {
		return sess
	}

	orch := orchestrator.New(s.generator, s.gate,
		orchestrator.WithStore(s.briefs),
		orchestrator.WithGateKey(userID.String()),
		orchestrator.WithStageTimeout(s.stageTimeout),
		orchestrator.WithNavigateDelay(s.navigateDelay),
	)
	sess := &session{
		briefID: brief.ID,
		userID:  userID,
		orch:    orch,
		records: make(chan runRecord, 64),
		done:    make(chan struct{}),
	}
	sess.unsubscribe = orch.Subscribe(func(ev orchestrator.Event) {
		if ev.Kind != orchestrator.EventStatus {
			return
		}
		sess.send(runRecord{runID: ev.RunID, status: ev.Status, errMsg: ev.Error})
	})
	go sess.record(s.runs)

	s.sessions[brief.ID] = sess
	return sess
}

// existingSession returns the session for briefID, or nil.
func (s *Server) existingSession(briefID uuid.UUID) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[briefID]
}

// dropSession cancels any active run and forgets the brief's session.
func (s *Server) dropSession(briefID uuid.UUID) {
	s.mu.Lock()
	sess := s.sessions[briefID]
	delete(s.sessions, briefID)
	s.mu.Unlock()

	if sess == nil {
		return
	}
	if sess.orch.Status().Active() {
		_ = sess.orch.Cancel()
	}
	sess.close()
}

func (sess *session) setTier(t gate.Tier) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.tier = t
}

func (sess *session) currentTier() gate.Tier {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.tier
}

func (sess *session) send(rec runRecord) {
	sess.sendMu.Lock()
	defer sess.sendMu.Unlock()
	if !sess.closed {
		sess.records <- rec
	}
}

// close stops the recorder after it has drained pending records.
func (sess *session) close() {
	sess.sendMu.Lock()
	if sess.closed {
		sess.sendMu.Unlock()
		return
	}
	sess.closed = true
	sess.unsubscribe()
	close(sess.records)
	sess.sendMu.Unlock()
	<-sess.done
}

// record writes run rows in event order. A run row is created on the first
// status event of a run id and finished on its terminal status.
func (sess *session) record(store RunStore) {
	defer close(sess.done)

	var created uuid.UUID
	for rec := range sess.records {
		if store == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), runRecordTimeout)
		if rec.runID != created && rec.status == orchestrator.StatusProcessing {
			userID := sess.userID
			_, err := store.CreateRun(ctx, db.RunInput{
				ID:      rec.runID,
				BriefID: sess.briefID,
				UserID:  &userID,
				Tier:    string(sess.currentTier()),
			})
			if err != nil {
				log.Printf("[server] failed to record run %s: %v", rec.runID, err)
			} else {
				created = rec.runID
			}
		}
		if rec.status.Terminal() && rec.runID == created {
			if err := store.FinishRun(ctx, rec.runID, string(rec.status), rec.errMsg, sess.runLogs(rec.runID)); err != nil {
				log.Printf("[server] failed to finish run %s: %v", rec.runID, err)
			}
		}
		cancel()
	}
}

// runLogs returns the log of runID, or nil once a newer run has replaced it.
func (sess *session) runLogs(runID uuid.UUID) []orchestrator.LogEntry {
	state := sess.orch.Snapshot()
	if state.RunID != runID {
		return nil
	}
	return state.Logs
}
