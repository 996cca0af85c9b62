package asset

// ParameterType enumerates animator parameter types.
type ParameterType string

const (
	ParameterFloat   ParameterType = "float"
	ParameterInt     ParameterType = "int"
	ParameterBool    ParameterType = "bool"
	ParameterTrigger ParameterType = "trigger"
)

// Parameter is an animator parameter declaration.
type Parameter struct {
	Name    string        `json:"name" yaml:"name"`
	Type    ParameterType `json:"type" yaml:"type"`
	Default float32       `json:"default,omitempty" yaml:"default,omitempty"`
}

// State is a node in a state machine.
type State struct {
	Name   string  `json:"name" yaml:"name"`
	Motion Motion  `json:"motion" yaml:"motion"`
	Speed  float32 `json:"speed" yaml:"speed"`
}

// StateMachine groups states and nested state machines.
type StateMachine struct {
	Name          string         `json:"name" yaml:"name"`
	DefaultState  string         `json:"default_state,omitempty" yaml:"default_state,omitempty"`
	States        []State        `json:"states" yaml:"states"`
	StateMachines []StateMachine `json:"state_machines,omitempty" yaml:"state_machines,omitempty"`
}

// Walk visits every state in the machine and its nested machines, depth first.
// The callback receives a pointer so callers may rewrite the state in place.
func (sm *StateMachine) Walk(fn func(*State)) {
	for i := range sm.States {
		fn(&sm.States[i])
	}
	for i := range sm.StateMachines {
		sm.StateMachines[i].Walk(fn)
	}
}

// Layer is one animator layer.
type Layer struct {
	Name         string       `json:"name" yaml:"name"`
	Weight       float32      `json:"weight" yaml:"weight"`
	StateMachine StateMachine `json:"state_machine" yaml:"state_machine"`
}

// AnimatorController is a layered state machine asset.
type AnimatorController struct {
	Meta       `yaml:",inline"`
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Layers     []Layer     `json:"layers" yaml:"layers"`
}

func (*AnimatorController) Kind() Kind { return KindController }

// WalkStates visits every state across all layers.
func (c *AnimatorController) WalkStates(fn func(*State)) {
	for i := range c.Layers {
		c.Layers[i].StateMachine.Walk(fn)
	}
}

// Motions returns every non-empty state motion in layer order.
func (c *AnimatorController) Motions() []Motion {
	var out []Motion
	c.WalkStates(func(s *State) {
		if !s.Motion.IsZero() {
			out = append(out, s.Motion)
		}
	})
	return out
}
