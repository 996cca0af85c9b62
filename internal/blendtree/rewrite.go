package blendtree

import (
	"fmt"

	"rigconvert/internal/asset"
)

// Rewrite returns a copy of tree with clip children substituted through clips
// and tree children through trees, and whether anything changed. tree itself
// is never modified.
func Rewrite(tree *asset.BlendTree, clips, trees map[asset.ID]asset.ID) (*asset.BlendTree, bool, error) {
	if tree == nil {
		return nil, false, fmt.Errorf("rewrite: nil blend tree")
	}
	if !Affected(tree, clips, trees) {
		return tree, false, nil
	}
	out, err := asset.Clone(tree)
	if err != nil {
		return nil, false, err
	}
	changed := false
	for i := range out.Children {
		if next, ok := substitute(out.Children[i].Motion, clips, trees); ok {
			out.Children[i].Motion = next
			changed = true
		}
	}
	return out, changed, nil
}

// Affected reports whether Rewrite would change tree.
func Affected(tree *asset.BlendTree, clips, trees map[asset.ID]asset.ID) bool {
	for _, child := range tree.Children {
		if _, ok := substitute(child.Motion, clips, trees); ok {
			return true
		}
	}
	return false
}

func substitute(m asset.Motion, clips, trees map[asset.ID]asset.ID) (asset.Motion, bool) {
	if m.IsZero() {
		return m, false
	}
	var table map[asset.ID]asset.ID
	switch m.Kind {
	case asset.MotionClip:
		table = clips
	case asset.MotionBlend:
		table = trees
	default:
		return m, false
	}
	target, ok := table[m.ID]
	if !ok || target == m.ID {
		return m, false
	}
	return asset.Motion{Kind: m.Kind, ID: target}, true
}
