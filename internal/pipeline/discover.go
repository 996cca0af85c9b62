package pipeline

import (
	"context"
	"errors"
	"fmt"

	"rigconvert/internal/animation"
	"rigconvert/internal/asset"
	"rigconvert/internal/blendtree"
	"rigconvert/internal/controller"
	"rigconvert/internal/converr"
)

// Reference origins for discovered materials.
const (
	FromRenderer  = "renderer"
	FromAnimation = "animation"
)

// Decision is the predicted outcome for one discovered asset.
type Decision struct {
	Kind    asset.Kind
	ID      asset.ID
	Name    string
	Convert bool
	Reason  string
}

// Discovery is everything a run will touch, loaded and ordered.
type Discovery struct {
	Rig       *asset.Rig
	Materials []*asset.Material
	// MaterialOrigin records whether a material was first seen on a renderer
	// or only inside an animation clip.
	MaterialOrigin map[asset.ID]string
	Clips          []*asset.AnimationClip
	Trees          map[asset.ID]*asset.BlendTree
	// TreeOrder lists tree ids leaves first.
	TreeOrder   []asset.ID
	Controllers []*asset.AnimatorController
	// Plan predicts convert versus pass-through for every asset, in stage
	// order.
	Plan []Decision
}

// Discover loads the rig and every asset reachable from it. It fails on
// unreadable references and on blend tree cycles; nothing is written.
func Discover(ctx context.Context, store asset.Store, rigID asset.ID, opts Options) (*Discovery, error) {
	src, err := asset.Load[*asset.Rig](ctx, store, rigID)
	if err != nil {
		return nil, converr.Wrap(converr.ErrValidation, StageDiscover, "load rig", string(rigID), err)
	}
	if src.Root == nil {
		return nil, converr.Wrap(converr.ErrValidation, StageDiscover, "load rig", asset.Describe(src)+" has no root node", nil)
	}

	d := &Discovery{Rig: src, MaterialOrigin: make(map[asset.ID]string)}
	proxies := animation.NewDenylist(opts.ProxyClips...)

	seenMaterials := make(map[asset.ID]struct{})
	addMaterial := func(id asset.ID, origin string) error {
		if _, ok := seenMaterials[id]; ok {
			return nil
		}
		seenMaterials[id] = struct{}{}
		m, err := asset.Load[*asset.Material](ctx, store, id)
		if err != nil {
			return converr.Wrap(converr.ErrValidation, StageDiscover, "load material", string(id), err)
		}
		d.Materials = append(d.Materials, m)
		d.MaterialOrigin[id] = origin
		return nil
	}
	for _, id := range src.MaterialSlots() {
		if err := addMaterial(id, FromRenderer); err != nil {
			return nil, err
		}
	}

	for _, id := range src.Controllers() {
		c, err := asset.Load[*asset.AnimatorController](ctx, store, id)
		if err != nil {
			return nil, converr.Wrap(converr.ErrValidation, StageDiscover, "load controller", string(id), err)
		}
		d.Controllers = append(d.Controllers, c)
	}

	var treeRoots []asset.ID
	for _, c := range d.Controllers {
		for _, m := range c.Motions() {
			if m.Kind == asset.MotionBlend {
				treeRoots = append(treeRoots, m.ID)
			}
		}
	}
	d.Trees, err = blendtree.Collect(ctx, store, treeRoots)
	if err != nil {
		return nil, converr.Wrap(converr.ErrValidation, StageDiscover, "collect blend trees", "", err)
	}
	d.TreeOrder, err = blendtree.Order(d.Trees)
	if err != nil {
		return nil, err
	}

	seenClips := make(map[asset.ID]struct{})
	addClip := func(id asset.ID) error {
		if id.IsZero() {
			return nil
		}
		if _, ok := seenClips[id]; ok {
			return nil
		}
		seenClips[id] = struct{}{}
		clip, err := asset.Load[*asset.AnimationClip](ctx, store, id)
		if err != nil {
			return converr.Wrap(converr.ErrValidation, StageDiscover, "load clip", string(id), err)
		}
		d.Clips = append(d.Clips, clip)
		return nil
	}
	visitedTrees := make(map[asset.ID]bool)
	var visitTree func(id asset.ID) error
	visitTree = func(id asset.ID) error {
		if visitedTrees[id] {
			return nil
		}
		visitedTrees[id] = true
		tree, ok := d.Trees[id]
		if !ok {
			return nil
		}
		for _, child := range tree.Children {
			switch child.Motion.Kind {
			case asset.MotionClip:
				if err := addClip(child.Motion.ID); err != nil {
					return err
				}
			case asset.MotionBlend:
				if err := visitTree(child.Motion.ID); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, c := range d.Controllers {
		for _, m := range c.Motions() {
			var err error
			switch m.Kind {
			case asset.MotionClip:
				err = addClip(m.ID)
			case asset.MotionBlend:
				err = visitTree(m.ID)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	for _, clip := range d.Clips {
		if proxies.Contains(clip.ID) {
			continue
		}
		for _, id := range clip.MaterialReferences() {
			if err := addMaterial(id, FromAnimation); err != nil {
				return nil, err
			}
		}
	}

	if err := d.checkOverrides(ctx, store, opts.ClipOverrides); err != nil {
		return nil, err
	}
	d.plan(opts, proxies)
	return d, nil
}

// checkOverrides verifies that override targets exist for every override
// whose source clip is actually used by a controller.
func (d *Discovery) checkOverrides(ctx context.Context, store asset.Store, overrides map[asset.ID]asset.ID) error {
	if len(overrides) == 0 {
		return nil
	}
	used := make(map[asset.ID]struct{})
	for _, c := range d.Controllers {
		for _, m := range c.Motions() {
			if m.Kind == asset.MotionClip {
				used[m.ID] = struct{}{}
			}
		}
	}
	for source, target := range overrides {
		if _, ok := used[source]; !ok {
			continue
		}
		if _, err := asset.Load[*asset.AnimationClip](ctx, store, target); err != nil {
			detail := fmt.Sprintf("override %s -> %s", source, target)
			if errors.Is(err, asset.ErrNotFound) {
				return converr.Wrap(converr.ErrValidation, StageDiscover, "check override", detail, err)
			}
			return converr.Wrap(converr.ErrStore, StageDiscover, "check override", detail, err)
		}
	}
	return nil
}

// plan predicts which assets will convert by propagating placeholder
// substitutions through the same rewriters the run uses.
func (d *Discovery) plan(opts Options, proxies animation.Denylist) {
	predicted := func(table map[asset.ID]asset.ID, id asset.ID) {
		table[id] = id + "#converted"
	}

	materials := make(map[asset.ID]asset.ID)
	for _, m := range d.Materials {
		decision := Decision{Kind: asset.KindMaterial, ID: m.ID, Name: m.Name}
		if opts.Policy.For(m.ID).IsApproved(m.Shader) {
			decision.Reason = fmt.Sprintf("shader %q already approved", m.Shader)
		} else {
			decision.Convert = true
			decision.Reason = fmt.Sprintf("shader %q -> %q", m.Shader, opts.Policy.For(m.ID).TargetShader)
			predicted(materials, m.ID)
		}
		d.Plan = append(d.Plan, decision)
	}

	clips := make(map[asset.ID]asset.ID)
	for _, clip := range d.Clips {
		decision := Decision{Kind: asset.KindClip, ID: clip.ID, Name: clip.Name}
		switch {
		case proxies.Contains(clip.ID):
			decision.Reason = "proxy animation"
		case animation.Affected(clip, materials):
			decision.Convert = true
			decision.Reason = "swaps converted materials"
			predicted(clips, clip.ID)
		default:
			decision.Reason = "no converted material references"
		}
		d.Plan = append(d.Plan, decision)
	}

	trees := make(map[asset.ID]asset.ID)
	for _, id := range d.TreeOrder {
		tree := d.Trees[id]
		decision := Decision{Kind: asset.KindBlendTree, ID: id, Name: tree.Name}
		if blendtree.Affected(tree, clips, trees) {
			decision.Convert = true
			decision.Reason = "references converted motions"
			predicted(trees, id)
		} else {
			decision.Reason = "no converted motions"
		}
		d.Plan = append(d.Plan, decision)
	}

	motions := controller.Merge(clips, trees, opts.ClipOverrides)
	for _, c := range d.Controllers {
		decision := Decision{Kind: asset.KindController, ID: c.ID, Name: c.Name}
		if controller.Affected(c, motions) {
			decision.Convert = true
			decision.Reason = "states reference converted or overridden motions"
		} else {
			decision.Reason = "no affected states"
		}
		d.Plan = append(d.Plan, decision)
	}
}

// Converting returns the planned conversions for kind.
func (d *Discovery) Converting(kind asset.Kind) int {
	n := 0
	for _, decision := range d.Plan {
		if decision.Kind == kind && decision.Convert {
			n++
		}
	}
	return n
}
