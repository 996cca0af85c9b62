package preflight_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rigconvert/internal/assetstore"
	"rigconvert/internal/preflight"
	"rigconvert/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := preflight.CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckStore_Missing(t *testing.T) {
	result := preflight.CheckStore(context.Background(), filepath.Join(t.TempDir(), "assets.db"))
	if !result.Passed || !strings.Contains(result.Detail, "not created yet") {
		t.Fatalf("expected pass for missing store, got: %s", result.Detail)
	}
}

func TestCheckStore_CountsAssets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MustSave(t, store, testsupport.MaterialNamed("Body", "Generic"), "Src/Body.mat")

	result := preflight.CheckStore(context.Background(), cfg.Paths.StorePath)
	if !result.Passed || !strings.Contains(result.Detail, "1 assets") {
		t.Fatalf("unexpected store result: %+v", result)
	}
}

func TestCheckLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.db.lock")
	if r := preflight.CheckLock(path); !r.Passed {
		t.Fatalf("expected free lock, got: %s", r.Detail)
	}
	lock, err := assetstore.AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()
	if r := preflight.CheckLock(path); r.Passed {
		t.Fatal("expected held lock to fail")
	}
}

func TestCheckConfig_Invalid(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Conversion.TargetShader = "Standard"
	if r := preflight.CheckConfig(cfg); r.Passed {
		t.Fatal("expected unapproved target shader to fail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := preflight.RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_FreshConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := preflight.RunAll(context.Background(), cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if failed := preflight.Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}
