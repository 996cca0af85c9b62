package runctx_test

import (
	"context"
	"testing"

	"rigconvert/internal/runctx"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = runctx.WithRunID(ctx, "run-42")
	ctx = runctx.WithStage(ctx, "materials")
	ctx = runctx.WithAssetID(ctx, "mat-1")

	if id, ok := runctx.RunIDFromContext(ctx); !ok || id != "run-42" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := runctx.StageFromContext(ctx); !ok || stage != "materials" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if id, ok := runctx.AssetIDFromContext(ctx); !ok || id != "mat-1" {
		t.Fatalf("unexpected asset id: %v %v", id, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = runctx.WithStage(ctx, "")
	ctx = runctx.WithRunID(ctx, "")
	if _, ok := runctx.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := runctx.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
