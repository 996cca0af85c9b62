package rig_test

import (
	"testing"

	"rigconvert/internal/asset"
	"rigconvert/internal/rig"
)

func sampleRig() *asset.Rig {
	return &asset.Rig{
		Meta: asset.Meta{ID: "r1", Name: "Avatar", Path: "Src/Avatar.prefab"},
		Root: &asset.Node{
			Name:    "Avatar",
			Active:  true,
			Players: []asset.AnimationPlayer{{Controller: "ctl"}},
			Children: []*asset.Node{
				{Name: "Body", Renderers: []asset.Renderer{{Type: asset.ComponentSkinnedMeshRenderer, Materials: []asset.ID{"m1", "", "m2"}}}},
				{Name: "Hat", Renderers: []asset.Renderer{{Type: asset.ComponentMeshRenderer, Materials: []asset.ID{"m1"}}}},
			},
		},
	}
}

func TestDuplicateClearsIdentity(t *testing.T) {
	src := sampleRig()
	dup, err := rig.Duplicate(src)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if !dup.ID.IsZero() || dup.Path != "" {
		t.Fatalf("expected cleared identity, got %+v", dup.Meta)
	}
	if dup.Name != "Avatar (Converted)" {
		t.Fatalf("unexpected name: %q", dup.Name)
	}
	if len(dup.Root.Children) != 2 || dup.Root.Children[0] == src.Root.Children[0] {
		t.Fatal("expected a structural copy")
	}
	if _, err := rig.Duplicate(&asset.Rig{}); err == nil {
		t.Fatal("expected error for rig without root")
	}
}

func TestRebindPreservesSharingAndOrder(t *testing.T) {
	src := sampleRig()
	dup, err := rig.Duplicate(src)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	changes := rig.Rebind(dup.Root,
		map[asset.ID]asset.ID{"ctl": "ctl-x"},
		map[asset.ID]asset.ID{"m1": "m1-x"},
	)

	body := dup.Root.Children[0].Renderers[0].Materials
	hat := dup.Root.Children[1].Renderers[0].Materials
	if body[0] != "m1-x" || hat[0] != "m1-x" {
		t.Fatalf("shared material must map to one converted id: %v %v", body, hat)
	}
	if body[1] != "" || body[2] != "m2" {
		t.Fatalf("empty and unmapped slots must pass through: %v", body)
	}
	if dup.Root.Players[0].Controller != "ctl-x" {
		t.Fatalf("controller not rebound: %q", dup.Root.Players[0].Controller)
	}
	if len(changes) != 3 || changes[0].Kind != rig.ChangeController {
		t.Fatalf("expected controller change first, got %+v", changes)
	}
	if changes[1].NodePath != "Body" || changes[2].NodePath != "Hat" {
		t.Fatalf("unexpected change paths: %+v", changes)
	}
	if src.Root.Children[0].Renderers[0].Materials[0] != "m1" || src.Root.Players[0].Controller != "ctl" {
		t.Fatal("source rig mutated")
	}
}
