package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run status values mirror the orchestrator statuses that end a run.
const (
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
	RunStatusCancelled  = "cancelled"
)

// Run is a persisted generation run.
type Run struct {
	ID           uuid.UUID       `json:"id"`
	BriefID      uuid.UUID       `json:"briefId"`
	UserID       *uuid.UUID      `json:"userId,omitempty"`
	Tier         string          `json:"tier"`
	Status       string          `json:"status"`
	ErrorMessage *string         `json:"errorMessage,omitempty"`
	Logs         json.RawMessage `json:"logs,omitempty"`
	StartedAt    time.Time       `json:"startedAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

// RunInput is the data needed to record a started run.
type RunInput struct {
	ID      uuid.UUID
	BriefID uuid.UUID
	UserID  *uuid.UUID
	Tier    string
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	UserID  *uuid.UUID
	BriefID *uuid.UUID
	Status  string
	Limit   int
}

// DefaultRunLimit caps ListRuns when no limit is given.
const DefaultRunLimit = 50
