package controller

import (
	"fmt"

	"rigconvert/internal/asset"
)

// Motions is the combined substitution table for state motions.
type Motions struct {
	Clips map[asset.ID]asset.ID
	Trees map[asset.ID]asset.ID
}

// Merge combines computed clip and tree substitutions with caller overrides.
// An override wins over a computed clip substitution for the same key and is
// applied even when the clip itself was not converted.
func Merge(clips, trees, overrides map[asset.ID]asset.ID) Motions {
	m := Motions{
		Clips: make(map[asset.ID]asset.ID, len(clips)+len(overrides)),
		Trees: make(map[asset.ID]asset.ID, len(trees)),
	}
	for source, target := range clips {
		m.Clips[source] = target
	}
	for source, target := range overrides {
		if source.IsZero() || target.IsZero() {
			continue
		}
		m.Clips[source] = target
	}
	for source, target := range trees {
		m.Trees[source] = target
	}
	return m
}

// Resolve returns the substitute for motion, if any.
func (m Motions) Resolve(motion asset.Motion) (asset.Motion, bool) {
	if motion.IsZero() {
		return motion, false
	}
	var table map[asset.ID]asset.ID
	switch motion.Kind {
	case asset.MotionClip:
		table = m.Clips
	case asset.MotionBlend:
		table = m.Trees
	default:
		return motion, false
	}
	target, ok := table[motion.ID]
	if !ok || target == motion.ID {
		return motion, false
	}
	return asset.Motion{Kind: motion.Kind, ID: target}, true
}

// Affected reports whether any state of c would be rewritten.
func Affected(c *asset.AnimatorController, m Motions) bool {
	if c == nil {
		return false
	}
	affected := false
	c.WalkStates(func(s *asset.State) {
		if _, ok := m.Resolve(s.Motion); ok {
			affected = true
		}
	})
	return affected
}

// Rewrite returns a duplicate of c with state motions substituted and the
// number of states rewritten. When no state is affected the original is
// returned with a count of zero.
func Rewrite(c *asset.AnimatorController, m Motions) (*asset.AnimatorController, int, error) {
	if c == nil {
		return nil, 0, fmt.Errorf("rewrite: nil controller")
	}
	if !Affected(c, m) {
		return c, 0, nil
	}
	out, err := asset.Clone(c)
	if err != nil {
		return nil, 0, err
	}
	rewritten := 0
	out.WalkStates(func(s *asset.State) {
		if next, ok := m.Resolve(s.Motion); ok {
			s.Motion = next
			rewritten++
		}
	})
	return out, rewritten, nil
}
