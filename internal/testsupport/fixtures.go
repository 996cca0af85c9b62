package testsupport

import (
	"fmt"
	"testing"

	"rigconvert/internal/asset"
)

// Scenario holds the ids of the minimal rig seeded by SeedScenario.
type Scenario struct {
	Texture    asset.ID
	Material   asset.ID
	Clip       asset.ID
	Controller asset.ID
	Rig        asset.ID
}

// SeedScenario stores a rig with one renderer using material "Body" (shader
// "Generic", emission #202020), and one controller whose only state plays a
// clip swapping that material on a MeshRenderer.
func SeedScenario(t testing.TB, store asset.Store) Scenario {
	t.Helper()

	var s Scenario
	s.Texture = MustSave(t, store, asset.SolidTexture("BodyTex", 4, 4, asset.White), "Src/Textures/BodyTex.png")

	emission, err := asset.ParseColor("#202020")
	if err != nil {
		t.Fatalf("parse color: %v", err)
	}
	s.Material = MustSave(t, store, &asset.Material{
		Meta:     asset.Meta{Name: "Body"},
		Shader:   "Generic",
		Textures: map[string]asset.ID{asset.SlotMainTex: s.Texture},
		Colors:   map[string]asset.Color{asset.SlotEmissionColor: emission},
	}, "Src/Materials/Body.mat")

	s.Clip = MustSave(t, store, ClipReferencing("Blink", s.Material), "Src/Animations/Blink.anim")
	s.Controller = MustSave(t, store, ControllerWith("FX", asset.ClipMotion(s.Clip)), "Src/FX.controller")

	s.Rig = MustSave(t, store, &asset.Rig{
		Meta: asset.Meta{Name: "Avatar"},
		Root: &asset.Node{
			Name:      "Avatar",
			Active:    true,
			Transform: asset.IdentityTransform,
			Players:   []asset.AnimationPlayer{{Controller: s.Controller}},
			Children: []*asset.Node{{
				Name:      "Body",
				Active:    true,
				Transform: asset.IdentityTransform,
				Renderers: []asset.Renderer{{Type: asset.ComponentMeshRenderer, Mesh: "Body", Materials: []asset.ID{s.Material}}},
			}},
		},
	}, "Src/Avatar.prefab")
	return s
}

// MaterialNamed builds a material without textures.
func MaterialNamed(name, shader string) *asset.Material {
	return &asset.Material{Meta: asset.Meta{Name: name}, Shader: shader}
}

// ClipReferencing builds a clip whose single MeshRenderer curve keys each
// material in turn. A zero id produces a "none" keyframe.
func ClipReferencing(name string, materials ...asset.ID) *asset.AnimationClip {
	keys := make([]asset.ObjectKeyframe, len(materials))
	for i, id := range materials {
		keys[i] = asset.ObjectKeyframe{Time: float32(i), Value: id}
	}
	return &asset.AnimationClip{
		Meta:   asset.Meta{Name: name},
		Length: float32(len(materials)),
		ObjectCurves: []asset.ObjectCurve{{
			Path:      "Body",
			Component: asset.ComponentMeshRenderer,
			Property:  "m_Materials.Array.data[0]",
			Keyframes: keys,
		}},
	}
}

// TreeWith builds a 1D blend tree over motions.
func TreeWith(name string, motions ...asset.Motion) *asset.BlendTree {
	children := make([]asset.ChildMotion, len(motions))
	for i, m := range motions {
		children[i] = asset.ChildMotion{Motion: m, Threshold: float32(i), TimeScale: 1}
	}
	return &asset.BlendTree{
		Meta:           asset.Meta{Name: name},
		BlendType:      asset.Blend1D,
		BlendParameter: "Blend",
		Children:       children,
	}
}

// ControllerWith builds a single-layer controller with one state per motion.
func ControllerWith(name string, motions ...asset.Motion) *asset.AnimatorController {
	states := make([]asset.State, len(motions))
	for i, m := range motions {
		states[i] = asset.State{Name: fmt.Sprintf("State%d", i), Motion: m, Speed: 1}
	}
	sm := asset.StateMachine{Name: "Base", States: states}
	if len(states) > 0 {
		sm.DefaultState = states[0].Name
	}
	return &asset.AnimatorController{
		Meta:   asset.Meta{Name: name},
		Layers: []asset.Layer{{Name: "Base", Weight: 1, StateMachine: sm}},
	}
}
