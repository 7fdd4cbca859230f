// Package briefs defines the Brief Store boundary and an in-memory implementation.
package briefs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/brandbot/internal/types"
)

// ErrNotFound is returned when a brief does not exist.
var ErrNotFound = errors.New("brief not found")

// Store persists brand briefs section by section.
type Store interface {
	// CreateBrief stores a new brief. A zero ID is replaced with a fresh one.
	CreateBrief(ctx context.Context, brief *types.BrandBrief) error
	// GetBrief returns nil, nil when the brief does not exist.
	GetBrief(ctx context.Context, id uuid.UUID) (*types.BrandBrief, error)
	// UpdateBriefSection shallow-merges fields into one section, replacing only
	// the keys present in fields.
	UpdateBriefSection(ctx context.Context, id uuid.UUID, section types.Section, fields map[string]any) error
	// ResetBriefAssets clears the generated assets of a brief.
	ResetBriefAssets(ctx context.Context, id uuid.UUID) error
	// DeleteBrief removes a brief.
	DeleteBrief(ctx context.Context, id uuid.UUID) error
}

// MergeSection applies a shallow merge of fields onto one section of brief.
// Keys that are not part of the section are rejected.
func MergeSection(brief *types.BrandBrief, section types.Section, fields map[string]any) error {
	target, err := sectionPointer(brief, section)
	if err != nil {
		return err
	}

	current, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("failed to marshal section %s: %w", section, err)
	}
	merged := make(map[string]any)
	if err := json.Unmarshal(current, &merged); err != nil {
		return fmt.Errorf("failed to read section %s: %w", section, err)
	}
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to marshal merged section %s: %w", section, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	// Decode into a fresh value so fields cleared by the merge do not linger.
	switch section {
	case types.SectionBasicInfo:
		var v types.BasicInfo
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("invalid fields for %s: %w", section, err)
		}
		brief.BasicInfo = v
	case types.SectionVisualPreferences:
		var v types.VisualPreferences
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("invalid fields for %s: %w", section, err)
		}
		brief.VisualPreferences = v
	case types.SectionGeneratedAssets:
		var v types.GeneratedAssets
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("invalid fields for %s: %w", section, err)
		}
		brief.GeneratedAssets = v
	}
	return nil
}

func sectionPointer(brief *types.BrandBrief, section types.Section) (any, error) {
	switch section {
	case types.SectionBasicInfo:
		return &brief.BasicInfo, nil
	case types.SectionVisualPreferences:
		return &brief.VisualPreferences, nil
	case types.SectionGeneratedAssets:
		return &brief.GeneratedAssets, nil
	default:
		return nil, fmt.Errorf("unknown brief section %q", section)
	}
}
