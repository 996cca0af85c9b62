package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateAnimation(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StorePath == "" {
		return errors.New("paths.store_path must be set")
	}
	if c.Paths.OutputRoot == "" {
		return errors.New("paths.output_root must be set")
	}
	if c.Paths.LockPath == c.Paths.StorePath {
		return errors.New("paths.lock_path must differ from paths.store_path")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if c.Conversion.TargetShader == "" {
		return errors.New("conversion.target_shader must be set")
	}
	if !c.IsApprovedShader(c.Conversion.TargetShader) {
		return fmt.Errorf("conversion.target_shader %q must be listed in conversion.approved_shaders", c.Conversion.TargetShader)
	}
	if err := validateTextureDimension("conversion.texture_max_dimension", c.Conversion.TextureMaxDimension); err != nil {
		return err
	}
	if err := validateBrightness("conversion.brightness_scale", c.Conversion.BrightnessScale); err != nil {
		return err
	}
	if c.Conversion.Workers > 64 {
		return errors.New("conversion.workers must be 64 or fewer")
	}

	ids := make([]string, 0, len(c.Conversion.MaterialOverrides))
	for id := range c.Conversion.MaterialOverrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		override := c.Conversion.MaterialOverrides[id]
		prefix := fmt.Sprintf("conversion.material_overrides.%q", id)
		if override.TargetShader != "" && !c.IsApprovedShader(override.TargetShader) {
			return fmt.Errorf("%s.target_shader %q must be listed in conversion.approved_shaders", prefix, override.TargetShader)
		}
		if override.TextureMaxDimension != nil {
			if err := validateTextureDimension(prefix+".texture_max_dimension", *override.TextureMaxDimension); err != nil {
				return err
			}
		}
		if override.BrightnessScale != nil {
			if err := validateBrightness(prefix+".brightness_scale", *override.BrightnessScale); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateTextureDimension(field string, value int) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", field)
	}
	if value > maxTextureDimension {
		return fmt.Errorf("%s must be <= %d", field, maxTextureDimension)
	}
	return nil
}

func validateBrightness(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number", field)
	}
	if value <= 0 {
		return fmt.Errorf("%s must be positive", field)
	}
	return nil
}

func (c *Config) validateAnimation() error {
	sources := make([]string, 0, len(c.Animation.Overrides))
	for source := range c.Animation.Overrides {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		target := c.Animation.Overrides[source]
		if target == "" {
			return fmt.Errorf("animation.overrides.%q must name a replacement clip id", source)
		}
		if target == source {
			return fmt.Errorf("animation.overrides.%q maps a clip onto itself", source)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return fmt.Errorf("logging.retention_days must be >= 0, got %d", c.Logging.RetentionDays)
	}
	return nil
}
