package orchestrator

// Status is the lifecycle state of a generation run.
type Status string

// Run statuses
const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

// transitions lists the statuses reachable from each status.
var transitions = map[Status][]Status{
	StatusIdle:       {StatusProcessing},
	StatusProcessing: {StatusPaused, StatusCompleted, StatusFailed, StatusCancelled},
	StatusPaused:     {StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {StatusProcessing},
	StatusFailed:     {StatusProcessing},
	StatusCancelled:  {StatusProcessing},
}

// CanTransitionTo reports whether next is reachable from s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active reports whether a run in this status holds a concurrency slot.
func (s Status) Active() bool {
	return s == StatusProcessing || s == StatusPaused
}

// Terminal reports whether the run has ended.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}
