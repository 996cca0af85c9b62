package pipeline_test

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"rigconvert/internal/asset"
	"rigconvert/internal/assetstore"
	"rigconvert/internal/converr"
	"rigconvert/internal/logging"
	"rigconvert/internal/material"
	"rigconvert/internal/pipeline"
	"rigconvert/internal/testsupport"
)

const targetShader = "VRChat/Mobile/Toon Lit"

func testOptions() pipeline.Options {
	return pipeline.Options{
		OutputRoot: "Out",
		Policy: material.Policy{
			TargetShader:        targetShader,
			ApprovedShaders:     []string{targetShader, "VRChat/Mobile/Standard Lite"},
			TextureMaxDimension: 1024,
			BrightnessScale:     1,
			BakeTextures:        true,
		},
		Workers: 2,
	}
}

type recorder struct {
	mu     sync.Mutex
	events []pipeline.Event
}

func (r *recorder) Progress(e pipeline.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) converted(stage string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, e := range r.events {
		if e.Stage == stage && e.Phase == pipeline.PhaseConverted {
			names = append(names, e.Name)
		}
	}
	return names
}

func TestConvertEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := assetstore.NewMemory()
	s := testsupport.SeedScenario(t, store)

	rec := &recorder{}
	result, err := pipeline.New(store, testOptions(), logging.NewNop(), rec).Convert(ctx, s.Rig)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	converted, passed := result.Counts()
	if converted[asset.KindMaterial] != 1 || converted[asset.KindTexture] != 1 || converted[asset.KindClip] != 1 || converted[asset.KindController] != 1 {
		t.Fatalf("unexpected converted counts: %v", converted)
	}
	if len(passed) != 0 {
		t.Fatalf("expected nothing passed through, got %v", result.Passed)
	}

	matID, ok := result.ConvertedID(asset.KindMaterial, s.Material)
	if !ok {
		t.Fatal("material was not converted")
	}
	mat := testsupport.MustLoad[*asset.Material](t, store, matID)
	if mat.Shader != targetShader {
		t.Fatalf("converted shader = %q", mat.Shader)
	}
	texID, ok := mat.Texture(asset.SlotMainTex)
	if !ok {
		t.Fatal("converted material has no baked main texture")
	}
	tex := testsupport.MustLoad[*asset.Texture](t, store, texID)
	// white base plus #202020 emission saturates to white
	if tex.Width != 4 || tex.Height != 4 || tex.Pixels[0] != 0xff {
		t.Fatalf("unexpected baked texture %dx%d first byte %#x", tex.Width, tex.Height, tex.Pixels[0])
	}

	clipID, ok := result.ConvertedID(asset.KindClip, s.Clip)
	if !ok {
		t.Fatal("clip was not converted")
	}
	clip := testsupport.MustLoad[*asset.AnimationClip](t, store, clipID)
	if got := clip.ObjectCurves[0].Keyframes[0].Value; got != matID {
		t.Fatalf("clip keyframe = %q, want %q", got, matID)
	}

	ctrlID, ok := result.ConvertedID(asset.KindController, s.Controller)
	if !ok {
		t.Fatal("controller was not converted")
	}
	ctrl := testsupport.MustLoad[*asset.AnimatorController](t, store, ctrlID)
	if got := ctrl.Layers[0].StateMachine.States[0].Motion; got != asset.ClipMotion(clipID) {
		t.Fatalf("controller state motion = %v", got)
	}

	if result.RigPath != "Out/Avatar (Converted)" {
		t.Fatalf("rig path = %q", result.RigPath)
	}
	out := testsupport.MustLoad[*asset.Rig](t, store, result.Rig)
	if out.Name != "Avatar (Converted)" {
		t.Fatalf("rig name = %q", out.Name)
	}
	if got := out.Root.Children[0].Renderers[0].Materials[0]; got != matID {
		t.Fatalf("renderer material = %q, want %q", got, matID)
	}
	if got := out.Root.Players[0].Controller; got != ctrlID {
		t.Fatalf("player controller = %q, want %q", got, ctrlID)
	}
	if len(result.Changes) != 2 {
		t.Fatalf("expected two rebinds, got %+v", result.Changes)
	}

	src := testsupport.MustLoad[*asset.Rig](t, store, s.Rig)
	if src.Root.Children[0].Renderers[0].Materials[0] != s.Material || src.Root.Players[0].Controller != s.Controller {
		t.Fatal("source rig was modified")
	}
	if names := rec.converted(pipeline.StageMaterials); len(names) != 1 || names[0] != "Body" {
		t.Fatalf("unexpected material events: %v", names)
	}
}

func TestConvertSharesConvertedMaterial(t *testing.T) {
	ctx := context.Background()
	store := testsupport.NewCountingStore(assetstore.NewMemory())
	shared := testsupport.MustSave(t, store, testsupport.MaterialNamed("Skin", "Generic"), "Src/Skin.mat")
	rigID := testsupport.MustSave(t, store, &asset.Rig{
		Meta: asset.Meta{Name: "Avatar"},
		Root: &asset.Node{
			Name: "Avatar",
			Children: []*asset.Node{
				{Name: "Head", Renderers: []asset.Renderer{{Type: asset.ComponentMeshRenderer, Materials: []asset.ID{shared}}}},
				{Name: "Hands", Renderers: []asset.Renderer{{Type: asset.ComponentSkinnedMeshRenderer, Materials: []asset.ID{shared, ""}}}},
			},
		},
	}, "Src/Avatar.prefab")
	store.Reset()

	result, err := pipeline.New(store, testOptions(), logging.NewNop(), nil).Convert(ctx, rigID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if store.Saves(asset.KindMaterial) != 1 {
		t.Fatalf("expected one material save, got %d", store.Saves(asset.KindMaterial))
	}
	out := testsupport.MustLoad[*asset.Rig](t, store, result.Rig)
	head := out.Root.Children[0].Renderers[0].Materials[0]
	hands := out.Root.Children[1].Renderers[0].Materials
	if head == shared || head != hands[0] {
		t.Fatalf("sharing lost: head %q hands %q", head, hands[0])
	}
	if !hands[1].IsZero() {
		t.Fatalf("empty slot rewritten to %q", hands[1])
	}
}

func TestConvertPassesThroughApprovedMaterials(t *testing.T) {
	ctx := context.Background()
	store := testsupport.NewCountingStore(assetstore.NewMemory())
	matID := testsupport.MustSave(t, store, testsupport.MaterialNamed("Body", targetShader), "Src/Body.mat")
	clipID := testsupport.MustSave(t, store, testsupport.ClipReferencing("Blink", matID), "Src/Blink.anim")
	ctrlID := testsupport.MustSave(t, store, testsupport.ControllerWith("FX", asset.ClipMotion(clipID)), "Src/FX.controller")
	rigID := testsupport.MustSave(t, store, &asset.Rig{
		Meta: asset.Meta{Name: "Avatar"},
		Root: &asset.Node{
			Name:      "Avatar",
			Players:   []asset.AnimationPlayer{{Controller: ctrlID}},
			Renderers: []asset.Renderer{{Type: asset.ComponentMeshRenderer, Materials: []asset.ID{matID}}},
		},
	}, "Src/Avatar.prefab")
	store.Reset()

	result, err := pipeline.New(store, testOptions(), logging.NewNop(), nil).Convert(ctx, rigID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if store.TotalSaves() != 1 || store.Saves(asset.KindRig) != 1 {
		t.Fatalf("expected only the rig to be saved, got %d saves", store.TotalSaves())
	}
	if len(result.Converted) != 0 {
		t.Fatalf("unexpected conversions: %+v", result.Converted)
	}
	_, passed := result.Counts()
	if passed[asset.KindMaterial] != 1 || passed[asset.KindClip] != 1 || passed[asset.KindController] != 1 {
		t.Fatalf("unexpected pass-through counts: %v", passed)
	}
	out := testsupport.MustLoad[*asset.Rig](t, store, result.Rig)
	if out.Root.Renderers[0].Materials[0] != matID || out.Root.Players[0].Controller != ctrlID {
		t.Fatal("pass-through references were rewritten")
	}
	if len(result.Changes) != 0 {
		t.Fatalf("unexpected rebinds: %+v", result.Changes)
	}
}

func seedTreeChain(t *testing.T, store asset.Store) (rigID asset.ID, trees map[string]asset.ID) {
	t.Helper()
	matID := testsupport.MustSave(t, store, testsupport.MaterialNamed("Body", "Generic"), "Src/Body.mat")
	clipID := testsupport.MustSave(t, store, testsupport.ClipReferencing("Swap", matID), "Src/Swap.anim")
	idle := testsupport.MustSave(t, store, testsupport.ClipReferencing("Idle"), "Src/Idle.anim")

	trees = make(map[string]asset.ID)
	trees["leaf"] = testsupport.MustSave(t, store, testsupport.TreeWith("Leaf", asset.ClipMotion(clipID)), "Src/Leaf.tree")
	trees["mid"] = testsupport.MustSave(t, store, testsupport.TreeWith("Mid", asset.TreeMotion(trees["leaf"]), asset.ClipMotion(idle)), "Src/Mid.tree")
	trees["root"] = testsupport.MustSave(t, store, testsupport.TreeWith("Root", asset.TreeMotion(trees["mid"]), asset.TreeMotion(trees["leaf"])), "Src/Root.tree")
	trees["still"] = testsupport.MustSave(t, store, testsupport.TreeWith("Still", asset.ClipMotion(idle)), "Src/Still.tree")

	ctrlID := testsupport.MustSave(t, store, testsupport.ControllerWith("FX",
		asset.TreeMotion(trees["root"]),
		asset.TreeMotion(trees["still"]),
	), "Src/FX.controller")
	rigID = testsupport.MustSave(t, store, &asset.Rig{
		Meta: asset.Meta{Name: "Avatar"},
		Root: &asset.Node{
			Name:      "Avatar",
			Players:   []asset.AnimationPlayer{{Controller: ctrlID}},
			Renderers: []asset.Renderer{{Type: asset.ComponentMeshRenderer, Materials: []asset.ID{matID}}},
		},
	}, "Src/Avatar.prefab")
	return rigID, trees
}

func TestConvertRewritesBlendTreesLeavesFirst(t *testing.T) {
	ctx := context.Background()
	store := assetstore.NewMemory()
	rigID, trees := seedTreeChain(t, store)

	rec := &recorder{}
	result, err := pipeline.New(store, testOptions(), logging.NewNop(), rec).Convert(ctx, rigID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	got := rec.converted(pipeline.StageBlendTrees)
	want := []string{"Leaf", "Mid", "Root"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("blend tree order = %v, want %v", got, want)
	}

	leaf, _ := result.ConvertedID(asset.KindBlendTree, trees["leaf"])
	mid, _ := result.ConvertedID(asset.KindBlendTree, trees["mid"])
	rootID, _ := result.ConvertedID(asset.KindBlendTree, trees["root"])
	root := testsupport.MustLoad[*asset.BlendTree](t, store, rootID)
	if root.Children[0].Motion != asset.TreeMotion(mid) || root.Children[1].Motion != asset.TreeMotion(leaf) {
		t.Fatalf("root children not rebound: %+v", root.Children)
	}
	midTree := testsupport.MustLoad[*asset.BlendTree](t, store, mid)
	srcMid := testsupport.MustLoad[*asset.BlendTree](t, store, trees["mid"])
	if midTree.Children[0].Motion != asset.TreeMotion(leaf) || midTree.Children[1].Motion != srcMid.Children[1].Motion {
		t.Fatalf("mid children = %+v", midTree.Children)
	}
	if _, ok := result.ConvertedID(asset.KindBlendTree, trees["still"]); ok {
		t.Fatal("unaffected tree was duplicated")
	}
}

func TestConvertCyclicBlendTreesWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := testsupport.NewCountingStore(assetstore.NewMemory())
	matID := testsupport.MustSave(t, store, testsupport.MaterialNamed("Body", "Generic"), "Src/Body.mat")

	first := testsupport.TreeWith("First")
	firstID := testsupport.MustSave(t, store, first, "Src/First.tree")
	secondID := testsupport.MustSave(t, store, testsupport.TreeWith("Second", asset.TreeMotion(firstID)), "Src/Second.tree")
	first.Children = []asset.ChildMotion{{Motion: asset.TreeMotion(secondID), TimeScale: 1}}
	testsupport.MustSave(t, store, first, "Src/First.tree")

	ctrlID := testsupport.MustSave(t, store, testsupport.ControllerWith("FX", asset.TreeMotion(firstID)), "Src/FX.controller")
	rigID := testsupport.MustSave(t, store, &asset.Rig{
		Meta: asset.Meta{Name: "Avatar"},
		Root: &asset.Node{
			Name:      "Avatar",
			Players:   []asset.AnimationPlayer{{Controller: ctrlID}},
			Renderers: []asset.Renderer{{Materials: []asset.ID{matID}}},
		},
	}, "Src/Avatar.prefab")
	store.Reset()

	_, err := pipeline.New(store, testOptions(), logging.NewNop(), nil).Convert(ctx, rigID)
	if !errors.Is(err, converr.ErrCyclicBlendTree) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	var cycle *converr.CycleError
	if !errors.As(err, &cycle) || len(cycle.IDs) != 2 {
		t.Fatalf("expected both trees in cycle error, got %v", err)
	}
	if store.TotalSaves() != 0 {
		t.Fatalf("expected no saves, got %d", store.TotalSaves())
	}
}

func TestConvertClipOverrideWins(t *testing.T) {
	ctx := context.Background()
	store := assetstore.NewMemory()
	s := testsupport.SeedScenario(t, store)
	override := testsupport.MustSave(t, store, testsupport.ClipReferencing("BlinkMobile"), "Src/BlinkMobile.anim")

	opts := testOptions()
	opts.ClipOverrides = map[asset.ID]asset.ID{s.Clip: override}
	result, err := pipeline.New(store, opts, logging.NewNop(), nil).Convert(ctx, s.Rig)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	ctrlID, ok := result.ConvertedID(asset.KindController, s.Controller)
	if !ok {
		t.Fatal("controller was not converted")
	}
	ctrl := testsupport.MustLoad[*asset.AnimatorController](t, store, ctrlID)
	if got := ctrl.Layers[0].StateMachine.States[0].Motion; got != asset.ClipMotion(override) {
		t.Fatalf("state motion = %v, want override %s", got, override)
	}
}

func TestConvertProxyClipPassesThrough(t *testing.T) {
	ctx := context.Background()
	store := testsupport.NewCountingStore(assetstore.NewMemory())
	s := testsupport.SeedScenario(t, store)
	store.Reset()

	opts := testOptions()
	opts.ProxyClips = []asset.ID{s.Clip}
	result, err := pipeline.New(store, opts, logging.NewNop(), nil).Convert(ctx, s.Rig)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if store.Saves(asset.KindClip) != 0 || store.Saves(asset.KindController) != 0 {
		t.Fatalf("proxy clip produced conversions: %+v", result.Converted)
	}
	out := testsupport.MustLoad[*asset.Rig](t, store, result.Rig)
	if out.Root.Players[0].Controller != s.Controller {
		t.Fatal("controller rebound without converted states")
	}
}

func TestConvertFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	backend := assetstore.NewMemory()
	store := testsupport.NewCountingStore(backend)
	s := testsupport.SeedScenario(t, store)
	before, err := backend.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	store.FailOn = func(a asset.Asset) bool { return a.Kind() == asset.KindClip }

	_, err = pipeline.New(store, testOptions(), logging.NewNop(), nil).Convert(ctx, s.Rig)
	if !errors.Is(err, converr.ErrClipConversion) {
		t.Fatalf("expected clip failure, got %v", err)
	}
	if !errors.Is(err, testsupport.ErrInjected) {
		t.Fatalf("expected cause in chain, got %v", err)
	}
	var assetErr *converr.AssetError
	if !errors.As(err, &assetErr) || assetErr.ID != s.Clip {
		t.Fatalf("expected error naming clip %s, got %v", s.Clip, err)
	}
	after, err := backend.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("expected %d assets after rollback, got %d", len(before), len(after))
	}
}

func TestConvertMaterialFailureNamesMaterial(t *testing.T) {
	ctx := context.Background()
	store := assetstore.NewMemory()
	s := testsupport.SeedScenario(t, store)

	opts := testOptions()
	opts.Compose = func(material.Sources, material.Policy) (*image.NRGBA, error) {
		return nil, errors.New("unsupported layer")
	}
	rec := &recorder{}
	_, err := pipeline.New(store, opts, logging.NewNop(), rec).Convert(ctx, s.Rig)
	if !errors.Is(err, converr.ErrMaterialConversion) {
		t.Fatalf("expected material failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "Body") {
		t.Fatalf("error does not name the material: %v", err)
	}
	var failed bool
	for _, e := range rec.events {
		if e.Phase == pipeline.PhaseFailed && e.AssetID == s.Material {
			failed = true
		}
	}
	if !failed {
		t.Fatal("observer did not see the failure")
	}
}

func TestConvertDryRunLeavesBaseUntouched(t *testing.T) {
	ctx := context.Background()
	base := assetstore.NewMemory()
	s := testsupport.SeedScenario(t, base)
	before, err := base.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	overlay := assetstore.NewOverlay(base)
	result, err := pipeline.New(overlay, testOptions(), logging.NewNop(), nil).Convert(ctx, s.Rig)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	after, err := base.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("base store changed: %d -> %d", len(before), len(after))
	}
	pending, err := overlay.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != len(result.Converted)+1 {
		t.Fatalf("expected %d pending assets, got %d", len(result.Converted)+1, len(pending))
	}
}

func TestConvertMissingRig(t *testing.T) {
	_, err := pipeline.New(assetstore.NewMemory(), testOptions(), logging.NewNop(), nil).Convert(context.Background(), "missing")
	if !errors.Is(err, asset.ErrNotFound) || !errors.Is(err, converr.ErrValidation) {
		t.Fatalf("expected validation not-found error, got %v", err)
	}
}

func TestConvertRejectsInvalidPolicy(t *testing.T) {
	opts := testOptions()
	opts.Policy.BrightnessScale = 0
	_, err := pipeline.New(assetstore.NewMemory(), opts, logging.NewNop(), nil).Convert(context.Background(), "any")
	if !errors.Is(err, converr.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

// seedSharedTexture stores one material per name, all using the same size x
// size main texture, on a single renderer in the given order.
func seedSharedTexture(t *testing.T, store asset.Store, size int, names ...string) (rigID, texID asset.ID, mats []asset.ID) {
	t.Helper()
	texID = testsupport.MustSave(t, store, asset.SolidTexture("Skin", size, size, asset.White), "Src/Skin.png")
	for _, name := range names {
		m := testsupport.MaterialNamed(name, "Generic")
		m.Textures = map[string]asset.ID{asset.SlotMainTex: texID}
		mats = append(mats, testsupport.MustSave(t, store, m, "Src/"+name+".mat"))
	}
	rigID = testsupport.MustSave(t, store, &asset.Rig{
		Meta: asset.Meta{Name: "Avatar"},
		Root: &asset.Node{
			Name:      "Avatar",
			Renderers: []asset.Renderer{{Type: asset.ComponentSkinnedMeshRenderer, Materials: mats}},
		},
	}, "Src/Avatar.prefab")
	return rigID, texID, mats
}

func mainTexture(t *testing.T, store asset.Store, result *pipeline.Result, source asset.ID) (*asset.Material, *asset.Texture) {
	t.Helper()
	matID, ok := result.ConvertedID(asset.KindMaterial, source)
	if !ok {
		t.Fatalf("material %s was not converted", source)
	}
	mat := testsupport.MustLoad[*asset.Material](t, store, matID)
	texID, ok := mat.Texture(asset.SlotMainTex)
	if !ok {
		t.Fatalf("material %s has no main texture", mat.Name)
	}
	return mat, testsupport.MustLoad[*asset.Texture](t, store, texID)
}

func TestConvertResizesSharedTexturePerLimit(t *testing.T) {
	ctx := context.Background()
	store := testsupport.NewCountingStore(assetstore.NewMemory())
	rigID, _, mats := seedSharedTexture(t, store, 64, "A", "B", "C")
	store.Reset()

	opts := testOptions()
	opts.Policy.BakeTextures = false
	opts.Policy.TextureMaxDimension = 32
	small := opts.Policy
	small.TextureMaxDimension = 8
	opts.Policy.Overrides = map[asset.ID]material.Policy{mats[1]: small}

	result, err := pipeline.New(store, opts, logging.NewNop(), nil).Convert(ctx, rigID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	_, texA := mainTexture(t, store, result, mats[0])
	_, texB := mainTexture(t, store, result, mats[1])
	_, texC := mainTexture(t, store, result, mats[2])
	if texA.Width != 32 || texA.Height != 32 {
		t.Fatalf("material A texture %dx%d, want 32x32", texA.Width, texA.Height)
	}
	if texB.Width != 8 || texB.Height != 8 {
		t.Fatalf("material B texture %dx%d, want 8x8", texB.Width, texB.Height)
	}
	if texC.ID != texA.ID {
		t.Fatalf("materials with the same limit should share %s, got %s", texA.ID, texC.ID)
	}
	if store.Saves(asset.KindTexture) != 2 {
		t.Fatalf("expected two resized textures, got %d", store.Saves(asset.KindTexture))
	}
}

func TestConvertAppliesMaterialOverrides(t *testing.T) {
	ctx := context.Background()
	store := testsupport.NewCountingStore(assetstore.NewMemory())
	rigID, texID, mats := seedSharedTexture(t, store, 64, "Body", "Hair", "Eyes")
	store.Reset()

	opts := testOptions()
	override := opts.Policy
	override.TargetShader = "VRChat/Mobile/Standard Lite"
	override.TextureMaxDimension = 16
	override.BakeTextures = false
	opts.Policy.Overrides = map[asset.ID]material.Policy{mats[1]: override}

	result, err := pipeline.New(store, opts, logging.NewNop(), nil).Convert(ctx, rigID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	hair, hairTex := mainTexture(t, store, result, mats[1])
	if hair.Shader != "VRChat/Mobile/Standard Lite" {
		t.Fatalf("overridden shader = %q", hair.Shader)
	}
	if hairTex.Width != 16 || hairTex.Height != 16 {
		t.Fatalf("overridden texture %dx%d, want 16x16", hairTex.Width, hairTex.Height)
	}

	seen := map[asset.ID]bool{hairTex.ID: true}
	for _, source := range []asset.ID{mats[0], mats[2]} {
		mat, tex := mainTexture(t, store, result, source)
		if mat.Shader != targetShader {
			t.Fatalf("material %s shader = %q, want %q", mat.Name, mat.Shader, targetShader)
		}
		if tex.ID == texID || seen[tex.ID] {
			t.Fatalf("material %s should have its own baked texture, got %s", mat.Name, tex.ID)
		}
		seen[tex.ID] = true
		if tex.Width != 64 || tex.Height != 64 {
			t.Fatalf("material %s baked texture %dx%d, want 64x64", mat.Name, tex.Width, tex.Height)
		}
	}
	// two baked textures plus one resized copy
	if store.Saves(asset.KindTexture) != 3 {
		t.Fatalf("expected three texture saves, got %d", store.Saves(asset.KindTexture))
	}
}

func TestConvertMaterialFailureStopsRemainingWork(t *testing.T) {
	ctx := context.Background()
	store := assetstore.NewMemory()
	rigID, _, mats := seedSharedTexture(t, store, 4, "Body", "Hair", "Eyes")

	opts := testOptions()
	opts.Workers = 1
	var calls atomic.Int32
	opts.Compose = func(material.Sources, material.Policy) (*image.NRGBA, error) {
		calls.Add(1)
		return nil, errors.New("unsupported layer")
	}
	rec := &recorder{}
	_, err := pipeline.New(store, opts, logging.NewNop(), rec).Convert(ctx, rigID)
	if !errors.Is(err, converr.ErrMaterialConversion) {
		t.Fatalf("expected material failure, got %v", err)
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("reported a cancelled material instead of the failure: %v", err)
	}
	var assetErr *converr.AssetError
	if !errors.As(err, &assetErr) || assetErr.ID != mats[0] {
		t.Fatalf("expected failure for %s, got %v", mats[0], err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("compose ran %d times after the first failure", n)
	}
}
