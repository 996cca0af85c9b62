package asset

import "fmt"

// MotionKind distinguishes clip and blend tree motions.
type MotionKind string

const (
	MotionNone  MotionKind = ""
	MotionClip  MotionKind = "clip"
	MotionBlend MotionKind = "blend_tree"
)

// Motion references either an animation clip or a blend tree.
type Motion struct {
	Kind MotionKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	ID   ID         `json:"id,omitempty" yaml:"id,omitempty"`
}

// ClipMotion references a clip.
func ClipMotion(id ID) Motion { return Motion{Kind: MotionClip, ID: id} }

// TreeMotion references a blend tree.
func TreeMotion(id ID) Motion { return Motion{Kind: MotionBlend, ID: id} }

// IsZero reports an empty motion slot.
func (m Motion) IsZero() bool {
	return m.Kind == MotionNone || m.ID.IsZero()
}

func (m Motion) String() string {
	if m.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s:%s", m.Kind, m.ID)
}

// BlendType mirrors the blend tree evaluation modes.
type BlendType string

const (
	Blend1D               BlendType = "simple1d"
	Blend2DSimple         BlendType = "simple_directional2d"
	Blend2DFreeform       BlendType = "freeform_directional2d"
	Blend2DFreeformCartes BlendType = "freeform_cartesian2d"
	BlendDirect           BlendType = "direct"
)

// ChildMotion is one entry of a blend tree.
type ChildMotion struct {
	Motion          Motion     `json:"motion" yaml:"motion"`
	Threshold       float32    `json:"threshold" yaml:"threshold"`
	Position        [2]float32 `json:"position" yaml:"position"`
	TimeScale       float32    `json:"time_scale" yaml:"time_scale"`
	DirectParameter string     `json:"direct_parameter,omitempty" yaml:"direct_parameter,omitempty"`
	Mirror          bool       `json:"mirror,omitempty" yaml:"mirror,omitempty"`
}

// BlendTree blends child motions by runtime parameters.
type BlendTree struct {
	Meta            `yaml:",inline"`
	BlendType       BlendType     `json:"blend_type" yaml:"blend_type"`
	BlendParameter  string        `json:"blend_parameter,omitempty" yaml:"blend_parameter,omitempty"`
	BlendParameterY string        `json:"blend_parameter_y,omitempty" yaml:"blend_parameter_y,omitempty"`
	Children        []ChildMotion `json:"children" yaml:"children"`
}

func (*BlendTree) Kind() Kind { return KindBlendTree }

// ChildTrees returns the distinct blend tree ids referenced directly.
func (t *BlendTree) ChildTrees() []ID {
	seen := make(map[ID]struct{})
	var out []ID
	for _, child := range t.Children {
		if child.Motion.Kind != MotionBlend || child.Motion.ID.IsZero() {
			continue
		}
		if _, ok := seen[child.Motion.ID]; ok {
			continue
		}
		seen[child.Motion.ID] = struct{}{}
		out = append(out, child.Motion.ID)
	}
	return out
}
