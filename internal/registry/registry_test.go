package registry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rigconvert/internal/asset"
	"rigconvert/internal/assetstore"
	"rigconvert/internal/converr"
	"rigconvert/internal/logging"
	"rigconvert/internal/registry"
	"rigconvert/internal/testsupport"
)

func TestGetOrInsertComputesOnce(t *testing.T) {
	ctx := context.Background()
	store := testsupport.NewCountingStore(assetstore.NewMemory())
	reg := registry.New(store, "Out", logging.NewNop())

	source := asset.Meta{ID: "mat-1", Name: "Skin"}
	calls := 0
	compute := func(context.Context) (asset.Asset, error) {
		calls++
		return testsupport.MaterialNamed("Skin", "Toon"), nil
	}

	first, err := reg.GetOrInsert(ctx, asset.KindMaterial, source, compute)
	if err != nil {
		t.Fatalf("GetOrInsert: %v", err)
	}
	second, err := reg.GetOrInsert(ctx, asset.KindMaterial, source, compute)
	if err != nil {
		t.Fatalf("GetOrInsert again: %v", err)
	}
	if first != second {
		t.Fatalf("expected same target, got %q and %q", first, second)
	}
	if calls != 1 {
		t.Fatalf("expected compute once, got %d", calls)
	}
	if store.Saves(asset.KindMaterial) != 1 {
		t.Fatalf("expected one save, got %d", store.Saves(asset.KindMaterial))
	}
	if got, ok := reg.Lookup(asset.KindMaterial, "mat-1"); !ok || got != first {
		t.Fatalf("Lookup = %q %v", got, ok)
	}
	if _, ok := reg.Lookup(asset.KindClip, "mat-1"); ok {
		t.Fatal("tables must be separate per kind")
	}
}

func TestComputeMayRegisterDependencies(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(assetstore.NewMemory(), "Out", logging.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := reg.GetOrInsert(ctx, asset.KindMaterial, asset.Meta{ID: "mat-1", Name: "Skin"}, func(ctx context.Context) (asset.Asset, error) {
			texID, err := reg.GetOrInsert(ctx, asset.KindTexture, asset.Meta{ID: "tex-1", Name: "SkinTex"}, func(context.Context) (asset.Asset, error) {
				return asset.SolidTexture("SkinTex", 2, 2, asset.White), nil
			})
			if err != nil {
				return nil, err
			}
			m := testsupport.MaterialNamed("Skin", "Toon")
			m.Textures = map[string]asset.ID{asset.SlotMainTex: texID}
			return m, nil
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("GetOrInsert: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("nested GetOrInsert did not return")
	}
	texID, ok := reg.Lookup(asset.KindTexture, "tex-1")
	if !ok {
		t.Fatal("texture was not registered")
	}
	matID, ok := reg.Lookup(asset.KindMaterial, "mat-1")
	if !ok {
		t.Fatal("material was not registered")
	}
	order := reg.Order()
	if len(order) != 2 || order[0].Target != texID || order[1].Target != matID {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestGetOrInsertSavesUnderKindDirectory(t *testing.T) {
	ctx := context.Background()
	store := assetstore.NewMemory()
	reg := registry.New(store, "Out", nil)

	converted := testsupport.ClipReferencing("Blink")
	converted.ID = "src-clip"
	converted.Path = "Src/Blink.anim"
	target, err := reg.GetOrInsert(ctx, asset.KindClip, asset.Meta{ID: "src-clip", Name: "Blink"}, func(context.Context) (asset.Asset, error) {
		return converted, nil
	})
	if err != nil {
		t.Fatalf("GetOrInsert: %v", err)
	}
	if target == "src-clip" {
		t.Fatal("expected a fresh id for the converted asset")
	}
	entries := reg.Order()
	if len(entries) != 1 {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[0].Path != "Out/Animations/Blink_src-clip.anim" {
		t.Fatalf("unexpected path: %q", entries[0].Path)
	}
	dirs, _ := store.Directories(ctx)
	if strings.Join(dirs, ",") != "Out,Out/Animations" {
		t.Fatalf("unexpected directories: %v", dirs)
	}
}

func TestComputeFailureDoesNotPoisonKey(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(assetstore.NewMemory(), "Out", nil)
	source := asset.Meta{ID: "mat-1", Name: "Skin"}
	boom := errors.New("boom")

	_, err := reg.GetOrInsert(ctx, asset.KindMaterial, source, func(context.Context) (asset.Asset, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if _, ok := reg.Lookup(asset.KindMaterial, "mat-1"); ok {
		t.Fatal("failed compute must not record a mapping")
	}
	if _, err := reg.GetOrInsert(ctx, asset.KindMaterial, source, func(context.Context) (asset.Asset, error) {
		return testsupport.MaterialNamed("Skin", "Toon"), nil
	}); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestGetOrInsertRejectsWrongKind(t *testing.T) {
	reg := registry.New(assetstore.NewMemory(), "Out", nil)
	_, err := reg.GetOrInsert(context.Background(), asset.KindClip, asset.Meta{ID: "c"}, func(context.Context) (asset.Asset, error) {
		return testsupport.MaterialNamed("Skin", "Toon"), nil
	})
	if err == nil {
		t.Fatal("expected kind mismatch error")
	}
}

func TestSaveFailureIsStoreError(t *testing.T) {
	store := testsupport.NewCountingStore(assetstore.NewMemory())
	store.FailOn = func(asset.Asset) bool { return true }
	reg := registry.New(store, "Out", nil)
	_, err := reg.GetOrInsert(context.Background(), asset.KindMaterial, asset.Meta{ID: "m"}, func(context.Context) (asset.Asset, error) {
		return testsupport.MaterialNamed("Skin", "Toon"), nil
	})
	if !errors.Is(err, converr.ErrStore) || !errors.Is(err, testsupport.ErrInjected) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if converr.Classify(err) != converr.KindStore {
		t.Fatalf("unexpected classification: %s", converr.Classify(err))
	}
}

func TestDiscardDeletesPersistedAssets(t *testing.T) {
	ctx := context.Background()
	store := assetstore.NewMemory()
	reg := registry.New(store, "Out", nil)
	for _, id := range []asset.ID{"a", "b"} {
		if _, err := reg.GetOrInsert(ctx, asset.KindMaterial, asset.Meta{ID: id, Name: string(id)}, func(context.Context) (asset.Asset, error) {
			return testsupport.MaterialNamed("", "Toon"), nil
		}); err != nil {
			t.Fatalf("GetOrInsert %s: %v", id, err)
		}
	}
	if reg.Counts()[asset.KindMaterial] != 2 {
		t.Fatalf("unexpected counts: %v", reg.Counts())
	}
	if err := reg.Discard(ctx); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	entries, _ := store.List(ctx, "")
	if len(entries) != 0 {
		t.Fatalf("expected empty store, got %+v", entries)
	}
	if len(reg.Map(asset.KindMaterial)) != 0 || len(reg.Order()) != 0 {
		t.Fatal("expected registry to be emptied")
	}
}
