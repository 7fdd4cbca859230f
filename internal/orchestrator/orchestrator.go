// Package orchestrator drives one brand generation run at a time through the
// name, tagline, identity and logo stages, tracking status, progress and an
// event log that observers can subscribe to.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/brandbot/internal/gate"
	"github.com/jonathan/brandbot/internal/generation"
	"github.com/jonathan/brandbot/internal/types"
)

const (
	// DefaultStageTimeout bounds a single generation call.
	DefaultStageTimeout = 45 * time.Second
	// DefaultNavigateDelay is how long after completion the navigate event fires.
	DefaultNavigateDelay = 1500 * time.Millisecond
	// DefaultGateKey is used when no per-user key is configured.
	DefaultGateKey = "local"
	// persistTimeout bounds a single brief write.
	persistTimeout = 10 * time.Second
)

// BriefWriter persists a section of a brief. briefs.Store satisfies it.
type BriefWriter interface {
	UpdateBriefSection(ctx context.Context, id uuid.UUID, section types.Section, fields map[string]any) error
}

// State is a point-in-time copy of the orchestrator.
type State struct {
	RunID        uuid.UUID         `json:"runId"`
	Status       Status            `json:"status"`
	Brief        *types.BrandBrief `json:"brief,omitempty"`
	Progress     ProgressState     `json:"progress"`
	Logs         []LogEntry        `json:"logs"`
	CurrentStage Stage             `json:"currentStage,omitempty"`
	Error        string            `json:"error,omitempty"`
	LogoMissing  bool              `json:"logoMissing"`
	StartedAt    time.Time         `json:"startedAt,omitempty"`
	FinishedAt   time.Time         `json:"finishedAt,omitempty"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore persists each stage's generated assets.
func WithStore(store BriefWriter) Option {
	return func(o *Orchestrator) { o.store = store }
}

// WithStageTimeout overrides DefaultStageTimeout. Non-positive values are ignored.
func WithStageTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.stageTimeout = d
		}
	}
}

// WithNavigateDelay overrides DefaultNavigateDelay.
func WithNavigateDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.navigateDelay = d
		}
	}
}

// WithGateKey sets the key runs are counted under, usually the user id.
func WithGateKey(key string) Option {
	return func(o *Orchestrator) {
		if key != "" {
			o.gateKey = key
		}
	}
}

// WithClock sets the time source for log entries and run timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// run is the bookkeeping for one accepted Start.
type run struct {
	id       uuid.UUID
	ctx      context.Context
	cancel   context.CancelFunc
	finished chan struct{} // closed on terminal status
	exited   chan struct{} // closed when the pipeline goroutine returns
	resumed  chan struct{} // replaced on each Pause, closed by Resume
	released bool
	closed   bool
}

// Orchestrator runs the generation pipeline for a single brief.
type Orchestrator struct {
	svc           generation.Service
	gate          gate.Gate
	store         BriefWriter
	gateKey       string
	stageTimeout  time.Duration
	navigateDelay time.Duration
	now           func() time.Time

	startMu sync.Mutex // serializes Start so the gate is consulted once per attempt
	mu      sync.Mutex
	emitMu  sync.Mutex

	status      Status
	current     *run
	brief       *types.BrandBrief
	progress    Tracker
	logs        *LogSink
	stage       Stage
	lastErr     string
	logoMissing bool
	startedAt   time.Time
	finishedAt  time.Time

	subMu       sync.Mutex
	subscribers map[int]func(Event)
	nextSubID   int
}

// New creates an idle orchestrator.
func New(svc generation.Service, g gate.Gate, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		svc:           svc,
		gate:          g,
		gateKey:       DefaultGateKey,
		stageTimeout:  DefaultStageTimeout,
		navigateDelay: DefaultNavigateDelay,
		now:           time.Now,
		status:        StatusIdle,
		subscribers:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logs = NewLogSink(o.now)
	return o
}

// Start launches a run for brief if this orchestrator is not busy and the gate
// admits another run under tierLimit. The brief is copied; the caller keeps ownership.
func (o *Orchestrator) Start(ctx context.Context, brief *types.BrandBrief, tierLimit int) (uuid.UUID, error) {
	if brief == nil {
		return uuid.Nil, errors.New("brief is required")
	}

	o.startMu.Lock()
	defer o.startMu.Unlock()

	o.mu.Lock()
	if o.status.Active() {
		o.mu.Unlock()
		return uuid.Nil, ErrRunInProgress
	}
	o.mu.Unlock()

	ok, err := o.gate.TryAcquire(ctx, o.gateKey, tierLimit)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to check generation limit: %w", err)
	}
	if !ok {
		active, aerr := o.gate.Active(ctx, o.gateKey)
		if aerr != nil {
			log.Printf("[orchestrator] failed to read active runs for %s: %v", o.gateKey, aerr)
			active = tierLimit
		}
		rej := &RejectionError{Limit: tierLimit, Active: active}

		o.mu.Lock()
		var events []Event
		o.appendLog(&events, fmt.Sprintf("Generation limit reached (%d/%d active). Wait for a run to finish or upgrade your plan.", active, tierLimit), LogWarning, ServiceSystem)
		events = append(events, Event{Kind: EventRejected, RunID: o.runID(), Status: o.status, Error: rej.Error()})
		o.publishAndUnlock(events)
		return uuid.Nil, rej
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{
		id:       uuid.New(),
		ctx:      runCtx,
		cancel:   cancel,
		finished: make(chan struct{}),
		exited:   make(chan struct{}),
	}

	o.mu.Lock()
	if err := o.transition(StatusProcessing); err != nil {
		o.mu.Unlock()
		cancel()
		if rerr := o.gate.Release(context.WithoutCancel(ctx), o.gateKey); rerr != nil {
			log.Printf("[orchestrator] failed to release gate for %s: %v", o.gateKey, rerr)
		}
		return uuid.Nil, err
	}
	o.current = r
	o.brief = brief.Clone()
	o.progress.Reset()
	o.logs.Clear()
	o.stage = ""
	o.lastErr = ""
	o.logoMissing = false
	o.startedAt = o.now()
	o.finishedAt = time.Time{}

	var events []Event
	events = append(events, o.statusEvent())
	events = append(events, o.progressEvent(nil))
	o.appendLog(&events, "Starting brand generation", LogInfo, ServiceSystem)
	log.Printf("[orchestrator] run %s started for brief %s", r.id, brief.ID)

	go o.execute(r)
	o.publishAndUnlock(events)
	return r.id, nil
}

// Run starts a run and blocks until it reaches a terminal status and its events
// have been delivered. If ctx is cancelled first, the run is cancelled.
func (o *Orchestrator) Run(ctx context.Context, brief *types.BrandBrief, tierLimit int) (State, error) {
	if _, err := o.Start(ctx, brief, tierLimit); err != nil {
		return o.Snapshot(), err
	}
	select {
	case <-o.Done():
	case <-ctx.Done():
		_ = o.Cancel()
		return o.Snapshot(), ctx.Err()
	}
	o.flush()
	state := o.Snapshot()
	if state.Status == StatusFailed {
		return state, errors.New(state.Error)
	}
	return state, nil
}

// Cancel stops the active run. Progress is reset and the gate slot released.
// Any stage result still in flight is discarded when it arrives.
func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	r := o.current
	if err := o.transition(StatusCancelled); err != nil {
		o.mu.Unlock()
		return err
	}
	o.progress.Reset()
	o.stage = ""
	o.finishRun(r)
	r.cancel()

	var events []Event
	events = append(events, o.statusEvent())
	events = append(events, o.progressEvent(nil))
	o.appendLog(&events, "Generation cancelled", LogWarning, ServiceSystem)
	log.Printf("[orchestrator] run %s cancelled", r.id)
	o.publishAndUnlock(events)
	return nil
}

// Pause holds the pipeline at the next stage boundary. The stage in flight
// finishes and its result is kept.
func (o *Orchestrator) Pause() error {
	o.mu.Lock()
	if err := o.transition(StatusPaused); err != nil {
		o.mu.Unlock()
		return err
	}
	o.current.resumed = make(chan struct{})

	var events []Event
	events = append(events, o.statusEvent())
	o.appendLog(&events, "Generation paused", LogInfo, ServiceSystem)
	o.publishAndUnlock(events)
	return nil
}

// Resume continues a paused run from the next stage.
func (o *Orchestrator) Resume() error {
	o.mu.Lock()
	if o.status != StatusPaused || o.current == nil {
		from := o.status
		o.mu.Unlock()
		return &TransitionError{From: from, To: StatusProcessing}
	}
	if err := o.transition(StatusProcessing); err != nil {
		o.mu.Unlock()
		return err
	}
	if o.current.resumed != nil {
		close(o.current.resumed)
		o.current.resumed = nil
	}

	var events []Event
	events = append(events, o.statusEvent())
	o.appendLog(&events, "Generation resumed", LogInfo, ServiceSystem)
	o.publishAndUnlock(events)
	return nil
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return State{
		RunID:        o.runID(),
		Status:       o.status,
		Brief:        o.brief.Clone(),
		Progress:     o.progress.State(),
		Logs:         o.logs.Entries(),
		CurrentStage: o.stage,
		Error:        o.lastErr,
		LogoMissing:  o.logoMissing,
		StartedAt:    o.startedAt,
		FinishedAt:   o.finishedAt,
	}
}

// Status returns the current status.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Done returns a channel closed when the current run reaches a terminal
// status. With no run it returns a closed channel.
func (o *Orchestrator) Done() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return o.current.finished
}

// transition moves to next or returns a TransitionError. Caller holds o.mu.
func (o *Orchestrator) transition(next Status) error {
	if !o.status.CanTransitionTo(next) {
		return &TransitionError{From: o.status, To: next}
	}
	o.status = next
	return nil
}

// isActive reports whether r is still the run this orchestrator is executing.
// Caller holds o.mu.
func (o *Orchestrator) isActive(r *run) bool {
	return o.current == r && o.status.Active()
}

// finishRun releases the gate slot and signals Done, each at most once per run.
// Caller holds o.mu.
func (o *Orchestrator) finishRun(r *run) {
	o.finishedAt = o.now()
	if !r.released {
		r.released = true
		if err := o.gate.Release(context.Background(), o.gateKey); err != nil {
			log.Printf("[orchestrator] failed to release gate for %s: %v", o.gateKey, err)
		}
	}
	if !r.closed {
		r.closed = true
		close(r.finished)
	}
}

func (o *Orchestrator) runID() uuid.UUID {
	if o.current == nil {
		return uuid.Nil
	}
	return o.current.id
}

func (o *Orchestrator) appendLog(events *[]Event, message string, typ LogType, service Service) {
	entry := o.logs.Append(message, typ, service)
	*events = append(*events, Event{Kind: EventLog, RunID: o.runID(), Log: &entry})
}

func (o *Orchestrator) statusEvent() Event {
	return Event{Kind: EventStatus, RunID: o.runID(), Status: o.status, Error: o.lastErr}
}

func (o *Orchestrator) progressEvent(assets *types.GeneratedAssets) Event {
	p := o.progress.State()
	return Event{Kind: EventProgress, RunID: o.runID(), Progress: &p, Assets: assets}
}
