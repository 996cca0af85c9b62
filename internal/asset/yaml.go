package asset

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders colors as #RRGGBBAA.
func (c Color) MarshalYAML() (any, error) {
	return c.Hex(), nil
}

// UnmarshalYAML accepts hex notation or an {r, g, b, a} mapping.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseColor(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*c = parsed
		return nil
	case yaml.MappingNode:
		type plain Color
		out := plain{A: 1}
		if err := value.Decode(&out); err != nil {
			return err
		}
		*c = Color(out)
		return nil
	default:
		return fmt.Errorf("line %d: color must be a hex string or mapping", value.Line)
	}
}
