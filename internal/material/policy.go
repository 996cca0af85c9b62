package material

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"rigconvert/internal/asset"
)

// Policy controls how one material converts.
type Policy struct {
	TargetShader    string
	ApprovedShaders []string
	// TextureMaxDimension caps the longest texture edge; 0 keeps source size.
	TextureMaxDimension int
	BrightnessScale     float64
	BakeTextures        bool
	// Overrides replace the policy for specific source materials.
	Overrides map[asset.ID]Policy
}

// For returns the effective policy for a material.
func (p Policy) For(id asset.ID) Policy {
	override, ok := p.Overrides[id]
	if !ok {
		out := p
		out.Overrides = nil
		return out
	}
	if len(override.ApprovedShaders) == 0 {
		override.ApprovedShaders = p.ApprovedShaders
	}
	override.Overrides = nil
	return override
}

// IsApproved reports whether shader needs no conversion.
func (p Policy) IsApproved(shader string) bool {
	shader = strings.TrimSpace(shader)
	for _, approved := range p.ApprovedShaders {
		if strings.EqualFold(approved, shader) {
			return true
		}
	}
	return false
}

// Validate checks that the policy can drive a conversion.
func (p Policy) Validate() error {
	if strings.TrimSpace(p.TargetShader) == "" {
		return errors.New("target shader is not set")
	}
	if p.TextureMaxDimension < 0 {
		return fmt.Errorf("texture max dimension %d is negative", p.TextureMaxDimension)
	}
	if math.IsNaN(p.BrightnessScale) || p.BrightnessScale <= 0 {
		return fmt.Errorf("brightness scale %v must be positive", p.BrightnessScale)
	}
	return nil
}
