package briefs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/brandbot/internal/types"
)

// MemoryStore keeps briefs in process memory. Used by the CLI and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	briefs map[uuid.UUID]*types.BrandBrief
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{briefs: make(map[uuid.UUID]*types.BrandBrief)}
}

// CreateBrief implements Store.
func (m *MemoryStore) CreateBrief(_ context.Context, brief *types.BrandBrief) error {
	if brief.ID == uuid.Nil {
		brief.ID = uuid.New()
	}
	now := time.Now().UTC()
	brief.CreatedAt = now
	brief.UpdatedAt = now

	m.mu.Lock()
	defer m.mu.Unlock()
	m.briefs[brief.ID] = brief.Clone()
	return nil
}

// GetBrief implements Store.
func (m *MemoryStore) GetBrief(_ context.Context, id uuid.UUID) (*types.BrandBrief, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	brief, ok := m.briefs[id]
	if !ok {
		return nil, nil
	}
	return brief.Clone(), nil
}

// UpdateBriefSection implements Store.
func (m *MemoryStore) UpdateBriefSection(_ context.Context, id uuid.UUID, section types.Section, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	brief, ok := m.briefs[id]
	if !ok {
		return ErrNotFound
	}
	updated := brief.Clone()
	if err := MergeSection(updated, section, fields); err != nil {
		return err
	}
	updated.UpdatedAt = time.Now().UTC()
	m.briefs[id] = updated
	return nil
}

// ResetBriefAssets implements Store.
func (m *MemoryStore) ResetBriefAssets(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	brief, ok := m.briefs[id]
	if !ok {
		return ErrNotFound
	}
	brief.GeneratedAssets = types.GeneratedAssets{}
	brief.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteBrief implements Store.
func (m *MemoryStore) DeleteBrief(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.briefs[id]; !ok {
		return ErrNotFound
	}
	delete(m.briefs, id)
	return nil
}
