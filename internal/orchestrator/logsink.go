package orchestrator

import (
	"sync"
	"time"
)

// LogType is the severity of a log entry.
type LogType string

// Log entry types
const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogWarning LogType = "warning"
	LogError   LogType = "error"
)

// Service tags which part of the pipeline a log entry is about.
type Service string

// ServiceSystem tags entries about the run as a whole. Stage entries use Stage.Service().
const ServiceSystem Service = "system"

// LogEntry is one immutable orchestration event.
type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      LogType   `json:"type"`
	Service   Service   `json:"service"`
	Message   string    `json:"message"`
}

// LogSink is an append-only record of entries, read most-recent-first.
// IDs keep increasing across Clear so they stay unique for the sink's lifetime.
type LogSink struct {
	mu      sync.RWMutex
	entries []LogEntry
	nextID  int64
	now     func() time.Time
}

// NewLogSink returns an empty sink stamped with now (time.Now when nil).
func NewLogSink(now func() time.Time) *LogSink {
	if now == nil {
		now = time.Now
	}
	return &LogSink{now: now}
}

// Append records a new entry and returns it.
func (s *LogSink) Append(message string, typ LogType, service Service) LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry := LogEntry{
		ID:        s.nextID,
		Timestamp: s.now(),
		Type:      typ,
		Service:   service,
		Message:   message,
	}
	s.entries = append(s.entries, entry)
	return entry
}

// Entries returns a copy of the log, most recent first.
func (s *LogSink) Entries() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LogEntry, len(s.entries))
	for i, e := range s.entries {
		out[len(s.entries)-1-i] = e
	}
	return out
}

// Len returns the number of entries.
func (s *LogSink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear drops every entry.
func (s *LogSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
