package assetstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"rigconvert/internal/asset"
	"rigconvert/internal/config"
)

// Store persists assets in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the asset database at the configured path
// and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.StorePath)
}

// OpenPath opens the database file at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Load decodes the asset with the given id.
func (s *Store) Load(ctx context.Context, id asset.ID) (asset.Asset, error) {
	var (
		kindRaw string
		payload string
	)
	err := s.db.QueryRowContext(ctx, `SELECT kind, payload FROM assets WHERE id = ?`, string(id)).Scan(&kindRaw, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %s: %w", id, asset.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	kind, err := asset.ParseKind(kindRaw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	a, err := decodeAsset(kind, []byte(payload))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return a, nil
}

// Save inserts or updates the asset at path.
func (s *Store) Save(ctx context.Context, a asset.Asset, path string) (asset.ID, error) {
	plan, err := planSave(a, path)
	if err != nil {
		return "", err
	}
	id, err := s.save(ctx, a, plan)
	if err != nil {
		plan.revert()
		return "", err
	}
	return id, nil
}

func (s *Store) save(ctx context.Context, a asset.Asset, plan *savePlan) (asset.ID, error) {
	payload, err := encodeAsset(a)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT id FROM assets WHERE path = ?`, plan.path).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return "", fmt.Errorf("check path %q: %w", plan.path, err)
	case asset.ID(owner) != plan.id():
		return "", fmt.Errorf("save %s at %q: %w by %s", a.Kind(), plan.path, ErrPathTaken, owner)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO assets (id, kind, name, path, payload, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
            kind = excluded.kind,
            name = excluded.name,
            path = excluded.path,
            payload = excluded.payload,
            updated_at = excluded.updated_at`,
		string(plan.id()),
		string(a.Kind()),
		plan.header.Name,
		plan.path,
		string(payload),
		now,
		now,
	)
	if err != nil {
		return "", fmt.Errorf("save %s at %q: %w", a.Kind(), plan.path, err)
	}
	for _, dir := range parentDirs(plan.path) {
		if err := ensureDirectoryTx(ctx, tx, dir, now); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save: %w", err)
	}
	return plan.id(), nil
}

// Delete removes an asset. Deleting an unknown id returns asset.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id asset.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete %s: %w", id, asset.ErrNotFound)
	}
	return nil
}

// EnsureDirectory records path and its ancestors as directories.
func (s *Store) EnsureDirectory(ctx context.Context, path string) error {
	path = CleanPath(path)
	if path == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin directory tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, dir := range append(parentDirs(path), path) {
		if err := ensureDirectoryTx(ctx, tx, dir, now); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit directory: %w", err)
	}
	return nil
}

func ensureDirectoryTx(ctx context.Context, tx *sql.Tx, dir, now string) error {
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO directories (path, created_at) VALUES (?, ?)`, dir, now); err != nil {
		return fmt.Errorf("ensure directory %q: %w", dir, err)
	}
	return nil
}

// UniquePath returns base, or base with a numeric suffix when an asset or
// directory already occupies it.
func (s *Store) UniquePath(ctx context.Context, base string) (string, error) {
	return uniquePath(base, func(candidate string) (bool, error) {
		var count int
		err := s.db.QueryRowContext(ctx,
			`SELECT (SELECT COUNT(1) FROM assets WHERE path = ?) + (SELECT COUNT(1) FROM directories WHERE path = ?)`,
			candidate, candidate,
		).Scan(&count)
		if err != nil {
			return false, fmt.Errorf("check path %q: %w", candidate, err)
		}
		return count > 0, nil
	})
}

// Resolve returns the id stored at path.
func (s *Store) Resolve(ctx context.Context, path string) (asset.ID, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM assets WHERE path = ?`, CleanPath(path)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("resolve %q: %w", path, asset.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	return asset.ID(id), nil
}

// List returns entries of kind ordered by path. An empty kind lists every asset.
func (s *Store) List(ctx context.Context, kind asset.Kind) ([]Entry, error) {
	query := `SELECT id, kind, name, path, created_at FROM assets`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id, kindRaw, name, path string
			createdRaw              sql.NullString
		)
		if err := rows.Scan(&id, &kindRaw, &name, &path, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		entry := Entry{ID: asset.ID(id), Kind: asset.Kind(kindRaw), Name: name, Path: path}
		if createdRaw.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, createdRaw.String); err == nil {
				entry.CreatedAt = ts
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return entries, nil
}

// Directories returns every recorded directory, sorted.
func (s *Store) Directories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM directories ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list directories: %w", err)
	}
	defer rows.Close()
	var dirs []string
	for rows.Next() {
		var dir string
		if err := rows.Scan(&dir); err != nil {
			return nil, fmt.Errorf("scan directory: %w", err)
		}
		dirs = append(dirs, dir)
	}
	return dirs, rows.Err()
}
