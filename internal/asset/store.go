package asset

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when an id or path is unknown.
var ErrNotFound = errors.New("asset not found")

// Store is the persistence collaborator consumed by the pipeline.
type Store interface {
	// Load returns the asset with the given id.
	Load(ctx context.Context, id ID) (Asset, error)
	// Save persists the asset at path. A zero id is replaced with a fresh one
	// before saving; the stored id is returned and written back to the header.
	Save(ctx context.Context, a Asset, path string) (ID, error)
	// Delete removes a previously saved asset.
	Delete(ctx context.Context, id ID) error
	// EnsureDirectory records path as an existing directory.
	EnsureDirectory(ctx context.Context, path string) error
	// UniquePath returns base, or base with a numeric suffix when base is
	// already taken.
	UniquePath(ctx context.Context, base string) (string, error)
}

// Load fetches an asset and asserts its concrete type.
func Load[T Asset](ctx context.Context, store Store, id ID) (T, error) {
	var zero T
	a, err := store.Load(ctx, id)
	if err != nil {
		return zero, err
	}
	typed, ok := a.(T)
	if !ok {
		return zero, fmt.Errorf("asset %s is a %s, not %T", id, a.Kind(), zero)
	}
	return typed, nil
}
