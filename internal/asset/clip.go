package asset

import "strings"

// Renderer component type names that carry material slots.
const (
	ComponentMeshRenderer        = "MeshRenderer"
	ComponentSkinnedMeshRenderer = "SkinnedMeshRenderer"
)

const materialSlotPropertyPrefix = "m_Materials.Array.data["

// ObjectKeyframe is one object-reference key. A zero Value means "none".
type ObjectKeyframe struct {
	Time  float32 `json:"time" yaml:"time"`
	Value ID      `json:"value,omitempty" yaml:"value,omitempty"`
}

// ObjectCurve animates an object reference property.
type ObjectCurve struct {
	Path      string           `json:"path" yaml:"path"`
	Component string           `json:"component" yaml:"component"`
	Property  string           `json:"property" yaml:"property"`
	Keyframes []ObjectKeyframe `json:"keyframes" yaml:"keyframes"`
}

// IsMaterialBinding reports whether the curve swaps a material slot on a
// renderer-like component.
func (c ObjectCurve) IsMaterialBinding() bool {
	switch c.Component {
	case ComponentMeshRenderer, ComponentSkinnedMeshRenderer:
	default:
		return false
	}
	return strings.HasPrefix(c.Property, materialSlotPropertyPrefix)
}

// FloatKeyframe is one scalar key.
type FloatKeyframe struct {
	Time  float32 `json:"time" yaml:"time"`
	Value float32 `json:"value" yaml:"value"`
}

// FloatCurve animates a scalar property. Float curves are never rewritten.
type FloatCurve struct {
	Path      string          `json:"path" yaml:"path"`
	Component string          `json:"component" yaml:"component"`
	Property  string          `json:"property" yaml:"property"`
	Keyframes []FloatKeyframe `json:"keyframes" yaml:"keyframes"`
}

// AnimationClip holds object-reference and scalar curves.
type AnimationClip struct {
	Meta         `yaml:",inline"`
	Length       float32       `json:"length" yaml:"length"`
	Loop         bool          `json:"loop" yaml:"loop"`
	ObjectCurves []ObjectCurve `json:"object_curves,omitempty" yaml:"object_curves,omitempty"`
	FloatCurves  []FloatCurve  `json:"float_curves,omitempty" yaml:"float_curves,omitempty"`
}

func (*AnimationClip) Kind() Kind { return KindClip }

// MaterialReferences returns the distinct non-empty material ids referenced by
// material binding curves, in first-seen order.
func (c *AnimationClip) MaterialReferences() []ID {
	seen := make(map[ID]struct{})
	var out []ID
	for _, curve := range c.ObjectCurves {
		if !curve.IsMaterialBinding() {
			continue
		}
		for _, key := range curve.Keyframes {
			if key.Value.IsZero() {
				continue
			}
			if _, ok := seen[key.Value]; ok {
				continue
			}
			seen[key.Value] = struct{}{}
			out = append(out, key.Value)
		}
	}
	return out
}
