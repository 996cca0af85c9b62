package asset

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is an opaque, stable asset identifier.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id ID) String() string {
	return string(id)
}

// Short returns the first eight characters for display.
func (id ID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Kind enumerates persisted asset types.
type Kind string

const (
	KindMaterial   Kind = "material"
	KindTexture    Kind = "texture"
	KindClip       Kind = "animation_clip"
	KindBlendTree  Kind = "blend_tree"
	KindController Kind = "animator_controller"
	KindRig        Kind = "rig"
)

// Kinds lists every asset kind in pipeline order.
func Kinds() []Kind {
	return []Kind{KindMaterial, KindTexture, KindClip, KindBlendTree, KindController, KindRig}
}

// ParseKind converts a stored kind label back into a Kind.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	for _, k := range Kinds() {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown asset kind %q", value)
}

// Directory returns the artifact subdirectory for converted assets of the kind.
func (k Kind) Directory() string {
	switch k {
	case KindMaterial:
		return "Materials"
	case KindTexture:
		return "Textures"
	case KindClip:
		return "Animations"
	case KindBlendTree:
		return "BlendTrees"
	case KindController:
		return "AnimatorControllers"
	default:
		return ""
	}
}

// Extension returns the file extension used when persisting the kind.
func (k Kind) Extension() string {
	switch k {
	case KindMaterial:
		return ".mat"
	case KindTexture:
		return ".png"
	case KindClip:
		return ".anim"
	case KindBlendTree:
		return ".blendtree"
	case KindController:
		return ".controller"
	case KindRig:
		return ".prefab"
	default:
		return ".asset"
	}
}

// Label returns a human readable name for the kind.
func (k Kind) Label() string {
	switch k {
	case KindMaterial:
		return "Material"
	case KindTexture:
		return "Texture"
	case KindClip:
		return "Animation Clip"
	case KindBlendTree:
		return "Blend Tree"
	case KindController:
		return "Animator Controller"
	case KindRig:
		return "Rig"
	default:
		return string(k)
	}
}

// Meta is the identity header shared by every asset.
type Meta struct {
	ID   ID     `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Header exposes the identity header for stores and registries.
func (m *Meta) Header() *Meta {
	return m
}

// Asset is implemented by every persisted type.
type Asset interface {
	Header() *Meta
	Kind() Kind
}

// Describe renders "Name (id)" for log and error messages.
func Describe(a Asset) string {
	if a == nil {
		return "<nil>"
	}
	h := a.Header()
	if strings.TrimSpace(h.Name) == "" {
		return string(h.ID)
	}
	return fmt.Sprintf("%s (%s)", h.Name, h.ID)
}
