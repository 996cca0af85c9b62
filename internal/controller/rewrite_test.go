package controller_test

import (
	"testing"

	"rigconvert/internal/asset"
	"rigconvert/internal/controller"
	"rigconvert/internal/testsupport"
)

func TestMergeOverrideWins(t *testing.T) {
	m := controller.Merge(
		map[asset.ID]asset.ID{"c": "c-converted", "d": "d-converted"},
		map[asset.ID]asset.ID{"t": "t-converted"},
		map[asset.ID]asset.ID{"c": "c-override", "e": "e-override"},
	)
	if m.Clips["c"] != "c-override" {
		t.Fatalf("override must win, got %q", m.Clips["c"])
	}
	if m.Clips["d"] != "d-converted" || m.Clips["e"] != "e-override" {
		t.Fatalf("unexpected clip table: %v", m.Clips)
	}
	if m.Trees["t"] != "t-converted" {
		t.Fatalf("unexpected tree table: %v", m.Trees)
	}
}

func TestRewriteWalksNestedStateMachines(t *testing.T) {
	src := testsupport.ControllerWith("FX", asset.ClipMotion("c1"), asset.TreeMotion("t1"), asset.ClipMotion("keep"))
	src.Layers[0].StateMachine.StateMachines = []asset.StateMachine{{
		Name:   "Gestures",
		States: []asset.State{{Name: "Wave", Motion: asset.ClipMotion("c1")}},
	}}
	src.Layers = append(src.Layers, asset.Layer{Name: "Empty", StateMachine: asset.StateMachine{States: []asset.State{{Name: "None"}}}})

	m := controller.Merge(map[asset.ID]asset.ID{"c1": "c1x"}, map[asset.ID]asset.ID{"t1": "t1x"}, nil)
	out, n, err := controller.Rewrite(src, m)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected three rewritten states, got %d", n)
	}
	base := out.Layers[0].StateMachine
	if base.States[0].Motion != asset.ClipMotion("c1x") || base.States[1].Motion != asset.TreeMotion("t1x") {
		t.Fatalf("unexpected states: %+v", base.States)
	}
	if base.States[2].Motion != asset.ClipMotion("keep") {
		t.Fatal("unmapped state must pass through")
	}
	if base.StateMachines[0].States[0].Motion != asset.ClipMotion("c1x") {
		t.Fatal("nested state machine not rewritten")
	}
	if !out.Layers[1].StateMachine.States[0].Motion.IsZero() {
		t.Fatal("empty motion must stay empty")
	}
	if src.Layers[0].StateMachine.States[0].Motion != asset.ClipMotion("c1") {
		t.Fatal("source controller mutated")
	}
}

func TestRewriteUnaffectedControllerIsPassThrough(t *testing.T) {
	src := testsupport.ControllerWith("Idle", asset.ClipMotion("idle"))
	out, n, err := controller.Rewrite(src, controller.Merge(map[asset.ID]asset.ID{"other": "x"}, nil, nil))
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if n != 0 || out != src {
		t.Fatal("expected pass-through")
	}
}

func TestResolveKeepsKindsApart(t *testing.T) {
	m := controller.Merge(map[asset.ID]asset.ID{"x": "clip"}, map[asset.ID]asset.ID{"y": "tree"}, nil)
	if _, ok := m.Resolve(asset.TreeMotion("x")); ok {
		t.Fatal("tree motion must not resolve through the clip table")
	}
	if got, ok := m.Resolve(asset.TreeMotion("y")); !ok || got != asset.TreeMotion("tree") {
		t.Fatalf("unexpected tree resolve: %v %v", got, ok)
	}
}

func TestOverrideTargetIsUsedAsStored(t *testing.T) {
	m := controller.Merge(
		map[asset.ID]asset.ID{"c": "c-converted", "o": "o-converted"},
		nil,
		map[asset.ID]asset.ID{"c": "o"},
	)
	got, ok := m.Resolve(asset.ClipMotion("c"))
	if !ok || got != asset.ClipMotion("o") {
		t.Fatalf("Resolve(c) = %v %v, want the override clip as stored", got, ok)
	}
}
