package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/brandbot/internal/briefs"
	"github.com/jonathan/brandbot/internal/types"
)

var _ briefs.Store = (*DB)(nil)

// sectionColumns maps brief sections to their JSONB columns. Only these names
// are ever interpolated into SQL.
var sectionColumns = map[types.Section]string{
	types.SectionBasicInfo:         "basic_info",
	types.SectionVisualPreferences: "visual_preferences",
	types.SectionGeneratedAssets:   "generated_assets",
}

func sectionColumn(section types.Section) (string, error) {
	col, ok := sectionColumns[section]
	if !ok {
		return "", fmt.Errorf("unknown brief section %q", section)
	}
	return col, nil
}

// CreateBrief inserts a brief. A zero ID is replaced with a fresh one.
func (db *DB) CreateBrief(ctx context.Context, brief *types.BrandBrief) error {
	if brief.ID == uuid.Nil {
		brief.ID = uuid.New()
	}
	basic, err := json.Marshal(brief.BasicInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal basic info: %w", err)
	}
	visual, err := json.Marshal(brief.VisualPreferences)
	if err != nil {
		return fmt.Errorf("failed to marshal visual preferences: %w", err)
	}
	assets, err := json.Marshal(brief.GeneratedAssets)
	if err != nil {
		return fmt.Errorf("failed to marshal generated assets: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO brand_briefs (id, user_id, basic_info, visual_preferences, generated_assets)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		brief.ID, brief.UserID, basic, visual, assets,
	).Scan(&brief.CreatedAt, &brief.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create brief: %w", err)
	}
	return nil
}

// GetBrief retrieves a brief by ID. Returns nil, nil when it does not exist.
func (db *DB) GetBrief(ctx context.Context, id uuid.UUID) (*types.BrandBrief, error) {
	var brief types.BrandBrief
	var basic, visual, assets []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, basic_info, visual_preferences, generated_assets, created_at, updated_at
		 FROM brand_briefs WHERE id = $1`,
		id,
	).Scan(&brief.ID, &brief.UserID, &basic, &visual, &assets, &brief.CreatedAt, &brief.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get brief: %w", err)
	}

	if err := decodeSections(&brief, basic, visual, assets); err != nil {
		return nil, err
	}
	return &brief, nil
}

// ListBriefs returns a user's briefs, newest first.
func (db *DB) ListBriefs(ctx context.Context, userID uuid.UUID, limit int) ([]types.BrandBrief, error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, basic_info, visual_preferences, generated_assets, created_at, updated_at
		 FROM brand_briefs WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list briefs: %w", err)
	}
	defer rows.Close()

	var out []types.BrandBrief
	for rows.Next() {
		var brief types.BrandBrief
		var basic, visual, assets []byte
		if err := rows.Scan(&brief.ID, &brief.UserID, &basic, &visual, &assets, &brief.CreatedAt, &brief.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brief: %w", err)
		}
		if err := decodeSections(&brief, basic, visual, assets); err != nil {
			return nil, err
		}
		out = append(out, brief)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list briefs: %w", err)
	}
	return out, nil
}

// UpdateBriefSection shallow-merges fields into one section's JSONB column.
// Fields are checked against the section's shape before anything is written.
func (db *DB) UpdateBriefSection(ctx context.Context, id uuid.UUID, section types.Section, fields map[string]any) error {
	col, err := sectionColumn(section)
	if err != nil {
		return err
	}
	if err := briefs.MergeSection(&types.BrandBrief{}, section, fields); err != nil {
		return err
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal %s fields: %w", section, err)
	}

	query := fmt.Sprintf(
		`UPDATE brand_briefs SET %[1]s = %[1]s || $2::jsonb, updated_at = NOW() WHERE id = $1`, col)
	result, err := db.pool.Exec(ctx, query, id, patch)
	if err != nil {
		return fmt.Errorf("failed to update brief %s: %w", section, err)
	}
	if result.RowsAffected() == 0 {
		return briefs.ErrNotFound
	}
	return nil
}

// ResetBriefAssets clears everything generated for a brief.
func (db *DB) ResetBriefAssets(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE brand_briefs SET generated_assets = '{}'::jsonb, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to reset brief: %w", err)
	}
	if result.RowsAffected() == 0 {
		return briefs.ErrNotFound
	}
	return nil
}

// DeleteBrief deletes a brief and its runs (via cascade)
func (db *DB) DeleteBrief(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM brand_briefs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brief: %w", err)
	}
	if result.RowsAffected() == 0 {
		return briefs.ErrNotFound
	}
	return nil
}

func decodeSections(brief *types.BrandBrief, basic, visual, assets []byte) error {
	if len(basic) > 0 {
		if err := json.Unmarshal(basic, &brief.BasicInfo); err != nil {
			return fmt.Errorf("failed to decode basic info: %w", err)
		}
	}
	if len(visual) > 0 {
		if err := json.Unmarshal(visual, &brief.VisualPreferences); err != nil {
			return fmt.Errorf("failed to decode visual preferences: %w", err)
		}
	}
	if len(assets) > 0 {
		if err := json.Unmarshal(assets, &brief.GeneratedAssets); err != nil {
			return fmt.Errorf("failed to decode generated assets: %w", err)
		}
	}
	return nil
}
