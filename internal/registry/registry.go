package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"rigconvert/internal/asset"
	"rigconvert/internal/converr"
	"rigconvert/internal/logging"
	"rigconvert/internal/textutil"
)

// Compute produces the converted asset for a source. The returned asset must
// be a new value; its id and path are assigned on save.
type Compute func(ctx context.Context) (asset.Asset, error)

// Entry records one persisted conversion.
type Entry struct {
	Kind       asset.Kind
	Source     asset.ID
	SourceName string
	Target     asset.ID
	Path       string
}

// Registry holds per-kind substitution tables for one run.
type Registry struct {
	store      asset.Store
	outputRoot string
	logger     *slog.Logger

	mu     sync.Mutex
	tables map[asset.Kind]map[asset.ID]asset.ID
	dirs   map[string]struct{}
	order  []Entry
}

// New returns an empty registry writing under outputRoot.
func New(store asset.Store, outputRoot string, logger *slog.Logger) *Registry {
	return &Registry{
		store:      store,
		outputRoot: outputRoot,
		logger:     logging.NewComponentLogger(logger, "registry"),
		tables:     make(map[asset.Kind]map[asset.ID]asset.ID),
		dirs:       make(map[string]struct{}),
	}
}

// GetOrInsert returns the converted id for (kind, source.ID), computing and
// persisting it on first use. compute runs without the registry lock held, so
// it may call back into the registry. Concurrent first calls for one key may
// each compute, but only one result is saved.
func (r *Registry) GetOrInsert(ctx context.Context, kind asset.Kind, source asset.Meta, compute Compute) (asset.ID, error) {
	if source.ID.IsZero() {
		return "", fmt.Errorf("registry %s: source id is empty", kind)
	}
	if target, ok := r.Lookup(kind, source.ID); ok {
		return target, nil
	}

	converted, err := compute(ctx)
	if err != nil {
		return "", err
	}
	if converted == nil {
		return "", fmt.Errorf("registry %s %s: compute returned no asset", kind, source.ID)
	}
	if converted.Kind() != kind {
		return "", fmt.Errorf("registry %s %s: compute returned a %s", kind, source.ID, converted.Kind())
	}

	header := converted.Header()
	header.ID = ""
	header.Path = ""
	if header.Name == "" {
		header.Name = source.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// A concurrent caller may have persisted the key while compute ran.
	if target, ok := r.tables[kind][source.ID]; ok {
		return target, nil
	}

	target, savedPath, err := r.persistLocked(ctx, kind, source, converted)
	if err != nil {
		return "", err
	}
	if err := r.insertLocked(kind, source.ID, target); err != nil {
		return "", err
	}
	r.order = append(r.order, Entry{
		Kind:       kind,
		Source:     source.ID,
		SourceName: source.Name,
		Target:     target,
		Path:       savedPath,
	})
	r.logger.Debug("asset converted",
		logging.String("kind", string(kind)),
		logging.String("source_id", string(source.ID)),
		logging.String("target_id", string(target)),
		logging.String("path", savedPath),
	)
	return target, nil
}

func (r *Registry) persistLocked(ctx context.Context, kind asset.Kind, source asset.Meta, a asset.Asset) (asset.ID, string, error) {
	dir := KindDir(r.outputRoot, kind)
	if _, ok := r.dirs[dir]; !ok {
		if err := r.store.EnsureDirectory(ctx, dir); err != nil {
			return "", "", converr.Wrap(converr.ErrStore, string(kind), "ensure directory", dir, err)
		}
		r.dirs[dir] = struct{}{}
	}
	base := path.Join(dir, textutil.AssetFileName(source.Name, string(source.ID), kind.Extension()))
	target, err := r.store.UniquePath(ctx, base)
	if err != nil {
		return "", "", converr.Wrap(converr.ErrStore, string(kind), "unique path", base, err)
	}
	id, err := r.store.Save(ctx, a, target)
	if err != nil {
		return "", "", converr.Wrap(converr.ErrStore, string(kind), "save", target, err)
	}
	return id, target, nil
}

func (r *Registry) insertLocked(kind asset.Kind, source, target asset.ID) error {
	table, ok := r.tables[kind]
	if !ok {
		table = make(map[asset.ID]asset.ID)
		r.tables[kind] = table
	}
	if _, exists := table[source]; exists {
		return &converr.ConflictError{Kind: kind, ID: source}
	}
	table[source] = target
	return nil
}

// KindDir returns the artifact directory for kind under outputRoot.
func KindDir(outputRoot string, kind asset.Kind) string {
	return path.Join(outputRoot, kind.Directory())
}

// Lookup returns the converted id for a source, if any.
func (r *Registry) Lookup(kind asset.Kind, source asset.ID) (asset.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.tables[kind][source]
	return target, ok
}

// Map returns a copy of the substitution table for kind.
func (r *Registry) Map(kind asset.Kind) map[asset.ID]asset.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[asset.ID]asset.ID, len(r.tables[kind]))
	for source, target := range r.tables[kind] {
		out[source] = target
	}
	return out
}

// Order returns every persisted conversion in insertion order.
func (r *Registry) Order() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.order...)
}

// Counts returns the number of conversions per kind.
func (r *Registry) Counts() map[asset.Kind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[asset.Kind]int, len(r.tables))
	for kind, table := range r.tables {
		counts[kind] = len(table)
	}
	return counts
}

// Discard deletes every persisted conversion, newest first, and empties the
// tables. Deletion keeps going after a failure; all failures are joined.
func (r *Registry) Discard(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		entry := r.order[i]
		if err := r.store.Delete(ctx, entry.Target); err != nil && !errors.Is(err, asset.ErrNotFound) {
			errs = append(errs, fmt.Errorf("discard %s %s: %w", entry.Kind, entry.Target, err))
		}
	}
	if len(r.order) > 0 {
		r.logger.Info("conversion rolled back",
			logging.Int("discarded", len(r.order)),
			logging.String(logging.FieldEventType, "rollback"),
		)
	}
	r.order = nil
	r.tables = make(map[asset.Kind]map[asset.ID]asset.ID)
	return errors.Join(errs...)
}
