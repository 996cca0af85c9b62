package converr_test

import (
	"errors"
	"strings"
	"testing"

	"rigconvert/internal/asset"
	"rigconvert/internal/converr"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := converr.Wrap(converr.ErrStore, "materials", "save", "write failed", base)
	if !errors.Is(err, converr.ErrStore) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"materials", "save", "write failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestMaterialFailedNamesAsset(t *testing.T) {
	cause := errors.New("texture missing")
	mat := &asset.Material{Meta: asset.Meta{ID: "m-1", Name: "Body"}, Shader: "Generic"}
	err := converr.MaterialFailed(mat, cause)

	if !errors.Is(err, converr.ErrMaterialConversion) {
		t.Fatalf("expected material marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable, got %v", err)
	}
	var assetErr *converr.AssetError
	if !errors.As(err, &assetErr) {
		t.Fatalf("expected AssetError, got %T", err)
	}
	if assetErr.ID != "m-1" || assetErr.Kind != asset.KindMaterial {
		t.Fatalf("unexpected asset error fields: %+v", assetErr)
	}
	for _, fragment := range []string{"Body", "m-1", `shader "Generic"`, "texture missing"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestClassify(t *testing.T) {
	cycle := &converr.CycleError{IDs: []asset.ID{"t1", "t2"}}
	if got := converr.Classify(cycle); got != converr.KindInput {
		t.Fatalf("expected input class for cycle, got %q", got)
	}
	if !errors.Is(cycle, converr.ErrCyclicBlendTree) {
		t.Fatal("expected cycle marker")
	}
	conflict := &converr.ConflictError{Kind: asset.KindClip, ID: "c1"}
	if got := converr.Classify(conflict); got != converr.KindInternal {
		t.Fatalf("expected internal class for conflict, got %q", got)
	}
	storeErr := converr.Wrap(converr.ErrStore, "registry", "save", "", errors.New("disk full"))
	if got := converr.Classify(storeErr); got != converr.KindStore {
		t.Fatalf("expected store class, got %q", got)
	}
	if got := converr.Classify(converr.ClipFailed(&asset.AnimationClip{}, errors.New("x"))); got != converr.KindConversion {
		t.Fatalf("expected conversion class, got %q", got)
	}
	if converr.Classify(nil) != "" {
		t.Fatal("expected empty class for nil")
	}
}

func TestAssetErrorInheritsStoreClass(t *testing.T) {
	storeErr := converr.Wrap(converr.ErrStore, "registry", "save", "", errors.New("database is locked"))
	err := converr.MaterialFailed(&asset.Material{Meta: asset.Meta{ID: "m1", Name: "Body"}}, storeErr)
	if got := converr.Classify(err); got != converr.KindStore {
		t.Fatalf("expected store class, got %q", got)
	}
	if !errors.Is(err, converr.ErrMaterialConversion) || !errors.Is(err, converr.ErrStore) {
		t.Fatalf("expected both markers in chain: %v", err)
	}
	if hint := converr.Hint(err); !strings.Contains(hint, "asset store") {
		t.Fatalf("unexpected hint %q", hint)
	}
}
