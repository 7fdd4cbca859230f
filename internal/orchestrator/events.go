package orchestrator

import (
	"github.com/google/uuid"

	"github.com/jonathan/brandbot/internal/types"
)

// EventKind identifies what changed.
type EventKind string

// Event kinds
const (
	EventStatus   EventKind = "status"
	EventProgress EventKind = "progress"
	EventLog      EventKind = "log"
	EventNavigate EventKind = "navigate"
	EventRejected EventKind = "rejected"
)

// Event is delivered to subscribers whenever orchestrator state changes.
type Event struct {
	Kind     EventKind              `json:"kind"`
	RunID    uuid.UUID              `json:"runId"`
	Status   Status                 `json:"status,omitempty"`
	Progress *ProgressState         `json:"progress,omitempty"`
	Assets   *types.GeneratedAssets `json:"assets,omitempty"`
	Log      *LogEntry              `json:"log,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// Subscribe registers fn for every future event and returns a function that
// removes it. Events are delivered in the order the state changed, outside the
// orchestrator lock. fn must not call back into the Orchestrator synchronously;
// hand the event to another goroutine first.
func (o *Orchestrator) Subscribe(fn func(Event)) func() {
	o.subMu.Lock()
	defer o.subMu.Unlock()

	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = fn

	return func() {
		o.subMu.Lock()
		defer o.subMu.Unlock()
		delete(o.subscribers, id)
	}
}

// publishAndUnlock must be called with o.mu held. It releases o.mu before
// delivering and holds emitMu so deliveries keep state order.
func (o *Orchestrator) publishAndUnlock(events []Event) {
	o.emitMu.Lock()
	o.mu.Unlock()
	defer o.emitMu.Unlock()

	if len(events) == 0 {
		return
	}

	o.subMu.Lock()
	subs := make([]func(Event), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	o.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// flush waits until every event published so far has been delivered.
// Publishers take emitMu before releasing mu, so holding mu first orders us
// after any delivery already under way.
func (o *Orchestrator) flush() {
	o.mu.Lock()
	o.emitMu.Lock()
	o.mu.Unlock()
	o.emitMu.Unlock()
}
