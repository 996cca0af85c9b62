package rig

import (
	"fmt"

	"rigconvert/internal/asset"
)

// ConvertedSuffix is appended to the name of a duplicated rig.
const ConvertedSuffix = " (Converted)"

// Duplicate returns a deep copy of src with a cleared identity and the
// converted name. src is never modified.
func Duplicate(src *asset.Rig) (*asset.Rig, error) {
	if src == nil || src.Root == nil {
		return nil, fmt.Errorf("duplicate: rig has no root")
	}
	dup, err := asset.Clone(src)
	if err != nil {
		return nil, err
	}
	dup.ID = ""
	dup.Path = ""
	dup.Name = ConvertedName(src)
	return dup, nil
}

// ConvertedName returns "<root name> (Converted)".
func ConvertedName(src *asset.Rig) string {
	name := src.Name
	if src.Root != nil && src.Root.Name != "" {
		name = src.Root.Name
	}
	return name + ConvertedSuffix
}

// ChangeKind names the reference a Change rewrote.
type ChangeKind string

const (
	ChangeController ChangeKind = "controller"
	ChangeMaterial   ChangeKind = "material"
)

// Change records one rebound reference.
type Change struct {
	Kind ChangeKind
	// NodePath is the slash-joined path from the root; "" is the root.
	NodePath  string
	Component int
	// Slot is the material slot index; always 0 for controllers.
	Slot int
	From asset.ID
	To   asset.ID
}

// Rebind rewrites player controllers, then renderer materials, in place.
// Empty slots and ids absent from the maps are left untouched. The returned
// log lists every change in application order.
func Rebind(root *asset.Node, controllers, materials map[asset.ID]asset.ID) []Change {
	var changes []Change
	root.Walk(func(path string, n *asset.Node) {
		for i := range n.Players {
			p := &n.Players[i]
			if target, ok := lookup(controllers, p.Controller); ok {
				changes = append(changes, Change{Kind: ChangeController, NodePath: path, Component: i, From: p.Controller, To: target})
				p.Controller = target
			}
		}
	})
	root.Walk(func(path string, n *asset.Node) {
		for i := range n.Renderers {
			slots := n.Renderers[i].Materials
			for s, id := range slots {
				if target, ok := lookup(materials, id); ok {
					changes = append(changes, Change{Kind: ChangeMaterial, NodePath: path, Component: i, Slot: s, From: id, To: target})
					slots[s] = target
				}
			}
		}
	})
	return changes
}

func lookup(table map[asset.ID]asset.ID, id asset.ID) (asset.ID, bool) {
	if id.IsZero() {
		return "", false
	}
	target, ok := table[id]
	if !ok || target == id {
		return "", false
	}
	return target, true
}
