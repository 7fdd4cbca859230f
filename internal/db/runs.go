package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const runColumns = `id, brief_id, user_id, tier, status, error_message, logs, started_at, completed_at`

// CreateRun records a run that has just been accepted.
func (db *DB) CreateRun(ctx context.Context, input RunInput) (*Run, error) {
	if input.ID == uuid.Nil {
		input.ID = uuid.New()
	}
	row := db.pool.QueryRow(ctx,
		`INSERT INTO generation_runs (id, brief_id, user_id, tier, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+runColumns,
		input.ID, input.BriefID, input.UserID, input.Tier, RunStatusProcessing,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// FinishRun stores the terminal status, error and log of a run.
func (db *DB) FinishRun(ctx context.Context, id uuid.UUID, status, errorMessage string, logs any) error {
	logsJSON, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("failed to marshal run logs: %w", err)
	}
	if string(logsJSON) == "null" {
		logsJSON = []byte("[]")
	}

	var errMsg *string
	if errorMessage != "" {
		errMsg = &errorMessage
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE generation_runs
		 SET status = $2, error_message = $3, logs = $4, completed_at = NOW()
		 WHERE id = $1`,
		id, status, errMsg, logsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil, nil when it does not exist.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM generation_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves recent runs with optional filters
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	query, args := buildListRunsQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func buildListRunsQuery(filters RunFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = DefaultRunLimit
	}

	query := `SELECT ` + runColumns + ` FROM generation_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argNum)
		args = append(args, *filters.UserID)
		argNum++
	}
	if filters.BriefID != nil {
		query += fmt.Sprintf(" AND brief_id = $%d", argNum)
		args = append(args, *filters.BriefID)
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var logs []byte
	if err := row.Scan(&run.ID, &run.BriefID, &run.UserID, &run.Tier, &run.Status,
		&run.ErrorMessage, &logs, &run.StartedAt, &run.CompletedAt); err != nil {
		return nil, err
	}
	if len(logs) > 0 {
		run.Logs = json.RawMessage(logs)
	}
	return &run, nil
}
