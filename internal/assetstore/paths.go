package assetstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"rigconvert/internal/asset"
)

// ErrPathTaken is returned when saving a new asset onto a path that already
// holds a different asset.
var ErrPathTaken = errors.New("store path already taken")

const maxUniqueAttempts = 10000

// Entry describes a persisted asset without decoding its payload.
type Entry struct {
	ID        asset.ID
	Kind      asset.Kind
	Name      string
	Path      string
	CreatedAt time.Time
}

// Backend is an asset.Store that can also enumerate and resolve paths.
type Backend interface {
	asset.Store
	// Resolve returns the id stored at path or asset.ErrNotFound.
	Resolve(ctx context.Context, path string) (asset.ID, error)
	// List returns entries of kind ordered by path. An empty kind lists all.
	List(ctx context.Context, kind asset.Kind) ([]Entry, error)
}

// CleanPath normalizes a store path: forward slashes, no leading or trailing
// slash, no dot segments.
func CleanPath(value string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, "\\", "/"))
	if value == "" {
		return ""
	}
	cleaned := strings.Trim(path.Clean("/"+value), "/")
	return cleaned
}

// parentDirs returns every ancestor directory of p, outermost first.
func parentDirs(p string) []string {
	var dirs []string
	for dir := path.Dir(p); dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
		dirs = append([]string{dir}, dirs...)
	}
	return dirs
}

// splitExt separates a trailing file extension. Suffixes containing spaces or
// parentheses are treated as part of the name.
func splitExt(p string) (string, string) {
	ext := path.Ext(p)
	if ext == "" || strings.ContainsAny(ext, " ()") {
		return p, ""
	}
	return strings.TrimSuffix(p, ext), ext
}

// uniquePath returns base when free, otherwise "base 1", "base 2", ... with
// the extension preserved.
func uniquePath(base string, taken func(string) (bool, error)) (string, error) {
	base = CleanPath(base)
	if base == "" {
		return "", errors.New("unique path: empty base")
	}
	used, err := taken(base)
	if err != nil {
		return "", err
	}
	if !used {
		return base, nil
	}
	stem, ext := splitExt(base)
	for n := 1; n <= maxUniqueAttempts; n++ {
		candidate := stem + " " + strconv.Itoa(n) + ext
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unique path: no free name for %q after %d attempts", base, maxUniqueAttempts)
}

// savePlan stamps the header before a save and can undo the stamp when the
// save fails.
type savePlan struct {
	header   *asset.Meta
	prevID   asset.ID
	prevPath string
	path     string
}

func planSave(a asset.Asset, p string) (*savePlan, error) {
	if a == nil {
		return nil, errors.New("save: nil asset")
	}
	p = CleanPath(p)
	if p == "" {
		return nil, fmt.Errorf("save %s: empty path", a.Kind())
	}
	header := a.Header()
	plan := &savePlan{header: header, prevID: header.ID, prevPath: header.Path, path: p}
	if header.ID.IsZero() {
		header.ID = asset.NewID()
	}
	header.Path = p
	return plan, nil
}

func (p *savePlan) id() asset.ID {
	return p.header.ID
}

func (p *savePlan) revert() {
	p.header.ID = p.prevID
	p.header.Path = p.prevPath
}
