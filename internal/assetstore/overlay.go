package assetstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"rigconvert/internal/asset"
)

// Overlay reads through to a base backend and keeps every write in memory.
// Deleting a base asset only hides it from the overlay.
type Overlay struct {
	base  Backend
	upper *Memory

	mu     sync.Mutex
	hidden map[asset.ID]struct{}
}

// NewOverlay wraps base.
func NewOverlay(base Backend) *Overlay {
	return &Overlay{base: base, upper: NewMemory(), hidden: make(map[asset.ID]struct{})}
}

func (o *Overlay) isHidden(id asset.ID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.hidden[id]
	return ok
}

// Load prefers pending writes and falls back to the base backend.
func (o *Overlay) Load(ctx context.Context, id asset.ID) (asset.Asset, error) {
	if o.isHidden(id) {
		return nil, fmt.Errorf("load %s: %w", id, asset.ErrNotFound)
	}
	a, err := o.upper.Load(ctx, id)
	if err == nil || !errors.Is(err, asset.ErrNotFound) {
		return a, err
	}
	return o.base.Load(ctx, id)
}

// Save records the asset in memory only.
func (o *Overlay) Save(ctx context.Context, a asset.Asset, path string) (asset.ID, error) {
	if a != nil {
		header := a.Header()
		if owner, err := o.base.Resolve(ctx, path); err == nil && owner != header.ID && !o.isHidden(owner) {
			return "", fmt.Errorf("save %s at %q: %w by %s", a.Kind(), CleanPath(path), ErrPathTaken, owner)
		}
	}
	return o.upper.Save(ctx, a, path)
}

// Delete drops a pending write or hides a base asset.
func (o *Overlay) Delete(ctx context.Context, id asset.ID) error {
	err := o.upper.Delete(ctx, id)
	if err == nil || !errors.Is(err, asset.ErrNotFound) {
		return err
	}
	if _, err := o.base.Load(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	o.mu.Lock()
	o.hidden[id] = struct{}{}
	o.mu.Unlock()
	return nil
}

// EnsureDirectory records the directory in memory.
func (o *Overlay) EnsureDirectory(ctx context.Context, path string) error {
	return o.upper.EnsureDirectory(ctx, path)
}

// UniquePath considers paths taken in either layer.
func (o *Overlay) UniquePath(ctx context.Context, base string) (string, error) {
	return uniquePath(base, func(candidate string) (bool, error) {
		o.upper.mu.Lock()
		taken := o.upper.takenLocked(candidate)
		o.upper.mu.Unlock()
		if taken {
			return true, nil
		}
		baseCandidate, err := o.base.UniquePath(ctx, candidate)
		if err != nil {
			return false, err
		}
		return baseCandidate != candidate, nil
	})
}

// Resolve checks pending writes first.
func (o *Overlay) Resolve(ctx context.Context, path string) (asset.ID, error) {
	if id, err := o.upper.Resolve(ctx, path); err == nil {
		return id, nil
	}
	id, err := o.base.Resolve(ctx, path)
	if err != nil {
		return "", err
	}
	if o.isHidden(id) {
		return "", fmt.Errorf("resolve %q: %w", path, asset.ErrNotFound)
	}
	return id, nil
}

// List merges both layers.
func (o *Overlay) List(ctx context.Context, kind asset.Kind) ([]Entry, error) {
	baseEntries, err := o.base.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	pending, err := o.upper.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(baseEntries)+len(pending))
	for _, entry := range baseEntries {
		if o.isHidden(entry.ID) {
			continue
		}
		entries = append(entries, entry)
	}
	entries = append(entries, pending...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Pending lists writes that would have been persisted.
func (o *Overlay) Pending(ctx context.Context) ([]Entry, error) {
	return o.upper.List(ctx, "")
}
