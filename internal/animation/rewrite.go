package animation

import (
	"fmt"

	"rigconvert/internal/asset"
)

// Rewrite returns a copy of clip whose material-binding keyframes are
// substituted through materials, and whether any keyframe changed. Keyframes
// whose value is not in the map, including empty ones, are copied as-is, as
// are all non-material curves. clip itself is never modified.
func Rewrite(clip *asset.AnimationClip, materials map[asset.ID]asset.ID) (*asset.AnimationClip, bool, error) {
	if clip == nil {
		return nil, false, fmt.Errorf("rewrite: nil clip")
	}
	if !Affected(clip, materials) {
		return clip, false, nil
	}
	out, err := asset.Clone(clip)
	if err != nil {
		return nil, false, err
	}
	changed := false
	for ci := range out.ObjectCurves {
		curve := &out.ObjectCurves[ci]
		if !curve.IsMaterialBinding() {
			continue
		}
		for ki := range curve.Keyframes {
			key := &curve.Keyframes[ki]
			if key.Value.IsZero() {
				continue
			}
			if target, ok := materials[key.Value]; ok && target != key.Value {
				key.Value = target
				changed = true
			}
		}
	}
	return out, changed, nil
}

// Affected reports whether Rewrite would change clip.
func Affected(clip *asset.AnimationClip, materials map[asset.ID]asset.ID) bool {
	if clip == nil || len(materials) == 0 {
		return false
	}
	for _, id := range clip.MaterialReferences() {
		if target, ok := materials[id]; ok && target != id {
			return true
		}
	}
	return false
}

// Denylist holds proxy clip ids that are never converted.
type Denylist map[asset.ID]struct{}

// NewDenylist builds a denylist from ids.
func NewDenylist(ids ...asset.ID) Denylist {
	d := make(Denylist, len(ids))
	for _, id := range ids {
		if !id.IsZero() {
			d[id] = struct{}{}
		}
	}
	return d
}

// Contains reports whether id is denylisted.
func (d Denylist) Contains(id asset.ID) bool {
	_, ok := d[id]
	return ok
}
