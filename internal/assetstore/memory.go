package assetstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rigconvert/internal/asset"
)

type memoryRecord struct {
	entry   Entry
	payload []byte
}

// Memory is an in-process Backend. Assets are stored encoded so every Load
// returns an independent copy.
type Memory struct {
	mu      sync.Mutex
	records map[asset.ID]memoryRecord
	paths   map[string]asset.ID
	dirs    map[string]struct{}
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[asset.ID]memoryRecord),
		paths:   make(map[string]asset.ID),
		dirs:    make(map[string]struct{}),
	}
}

// Load decodes the asset with the given id.
func (m *Memory) Load(_ context.Context, id asset.ID) (asset.Asset, error) {
	m.mu.Lock()
	rec, ok := m.records[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("load %s: %w", id, asset.ErrNotFound)
	}
	a, err := decodeAsset(rec.entry.Kind, rec.payload)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return a, nil
}

// Save inserts or updates the asset at path.
func (m *Memory) Save(ctx context.Context, a asset.Asset, path string) (asset.ID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	plan, err := planSave(a, path)
	if err != nil {
		return "", err
	}
	payload, err := encodeAsset(a)
	if err != nil {
		plan.revert()
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := plan.id()
	if owner, ok := m.paths[plan.path]; ok && owner != id {
		plan.revert()
		return "", fmt.Errorf("save %s at %q: %w by %s", a.Kind(), plan.path, ErrPathTaken, owner)
	}
	created := time.Now().UTC()
	if prev, ok := m.records[id]; ok {
		delete(m.paths, prev.entry.Path)
		created = prev.entry.CreatedAt
	}
	m.records[id] = memoryRecord{
		entry: Entry{
			ID:        id,
			Kind:      a.Kind(),
			Name:      plan.header.Name,
			Path:      plan.path,
			CreatedAt: created,
		},
		payload: payload,
	}
	m.paths[plan.path] = id
	for _, dir := range parentDirs(plan.path) {
		m.dirs[dir] = struct{}{}
	}
	return id, nil
}

// Delete removes an asset.
func (m *Memory) Delete(_ context.Context, id asset.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("delete %s: %w", id, asset.ErrNotFound)
	}
	delete(m.records, id)
	delete(m.paths, rec.entry.Path)
	return nil
}

// EnsureDirectory records path and its ancestors.
func (m *Memory) EnsureDirectory(_ context.Context, path string) error {
	path = CleanPath(path)
	if path == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, dir := range append(parentDirs(path), path) {
		m.dirs[dir] = struct{}{}
	}
	return nil
}

// UniquePath returns base or the first free numbered variant.
func (m *Memory) UniquePath(_ context.Context, base string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uniquePath(base, func(candidate string) (bool, error) {
		return m.takenLocked(candidate), nil
	})
}

func (m *Memory) takenLocked(p string) bool {
	if _, ok := m.paths[p]; ok {
		return true
	}
	_, ok := m.dirs[p]
	return ok
}

// Resolve returns the id stored at path.
func (m *Memory) Resolve(_ context.Context, path string) (asset.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.paths[CleanPath(path)]
	if !ok {
		return "", fmt.Errorf("resolve %q: %w", path, asset.ErrNotFound)
	}
	return id, nil
}

// List returns entries of kind ordered by path.
func (m *Memory) List(_ context.Context, kind asset.Kind) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Entry, 0, len(m.records))
	for _, rec := range m.records {
		if kind != "" && rec.entry.Kind != kind {
			continue
		}
		entries = append(entries, rec.entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Directories returns every recorded directory, sorted.
func (m *Memory) Directories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dirs := make([]string, 0, len(m.dirs))
	for dir := range m.dirs {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}
