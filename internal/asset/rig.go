package asset

// Transform is a local TRS transform.
type Transform struct {
	Position [3]float32 `json:"position" yaml:"position"`
	Rotation [4]float32 `json:"rotation" yaml:"rotation"`
	Scale    [3]float32 `json:"scale" yaml:"scale"`
}

// IdentityTransform has unit scale and identity rotation.
var IdentityTransform = Transform{Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}}

// Renderer is a renderer-like component with ordered material slots. A zero
// ID marks an empty slot.
type Renderer struct {
	Type      string `json:"type" yaml:"type"`
	Mesh      string `json:"mesh,omitempty" yaml:"mesh,omitempty"`
	Materials []ID   `json:"materials" yaml:"materials"`
}

// AnimationPlayer is an animator-like component driving a controller.
type AnimationPlayer struct {
	Controller ID     `json:"controller,omitempty" yaml:"controller,omitempty"`
	Avatar     string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Node is one object of the rig hierarchy.
type Node struct {
	Name      string            `json:"name" yaml:"name"`
	Active    bool              `json:"active" yaml:"active"`
	Transform Transform         `json:"transform" yaml:"transform"`
	Renderers []Renderer        `json:"renderers,omitempty" yaml:"renderers,omitempty"`
	Players   []AnimationPlayer `json:"players,omitempty" yaml:"players,omitempty"`
	Children  []*Node           `json:"children,omitempty" yaml:"children,omitempty"`
}

// Walk visits the node and its descendants depth first. The path argument is
// the slash-joined name path from the root (the root itself has path "").
func (n *Node) Walk(fn func(path string, node *Node)) {
	n.walk("", true, fn)
}

func (n *Node) walk(path string, root bool, fn func(string, *Node)) {
	if n == nil {
		return
	}
	fn(path, n)
	for _, child := range n.Children {
		childPath := child.Name
		if !root && path != "" {
			childPath = path + "/" + child.Name
		}
		child.walk(childPath, false, fn)
	}
}

// Rig is a persisted root object graph.
type Rig struct {
	Meta `yaml:",inline"`
	Root *Node `json:"root" yaml:"root"`
}

func (*Rig) Kind() Kind { return KindRig }

// MaterialSlots returns the distinct materials referenced by renderers in
// hierarchy order.
func (r *Rig) MaterialSlots() []ID {
	seen := make(map[ID]struct{})
	var out []ID
	r.Root.Walk(func(_ string, n *Node) {
		for _, renderer := range n.Renderers {
			for _, id := range renderer.Materials {
				if id.IsZero() {
					continue
				}
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	})
	return out
}

// Controllers returns the distinct controllers referenced by animation
// players in hierarchy order.
func (r *Rig) Controllers() []ID {
	seen := make(map[ID]struct{})
	var out []ID
	r.Root.Walk(func(_ string, n *Node) {
		for _, p := range n.Players {
			if p.Controller.IsZero() {
				continue
			}
			if _, ok := seen[p.Controller]; ok {
				continue
			}
			seen[p.Controller] = struct{}{}
			out = append(out, p.Controller)
		}
	})
	return out
}
