package config

import (
	"fmt"
	"os"
	"path"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeAnimation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("RIGCONVERT_STORE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StorePath = value
	}
	if strings.TrimSpace(c.Paths.StorePath) == "" {
		c.Paths.StorePath = defaultStorePath
	}
	var err error
	if c.Paths.StorePath, err = expandPath(c.Paths.StorePath); err != nil {
		return fmt.Errorf("paths.store_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = c.Paths.StorePath + ".lock"
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	c.Paths.OutputRoot = normalizeStorePath(c.Paths.OutputRoot)
	if c.Paths.OutputRoot == "" {
		c.Paths.OutputRoot = defaultOutputRoot
	}
	return nil
}

// normalizeStorePath cleans a slash-separated path inside the asset store.
// Store paths are never expanded against the host filesystem.
func normalizeStorePath(value string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, "\\", "/"))
	if value == "" {
		return ""
	}
	value = strings.Trim(path.Clean(value), "/")
	if value == "." {
		return ""
	}
	return value
}

func (c *Config) normalizeConversion() {
	c.Conversion.TargetShader = strings.TrimSpace(c.Conversion.TargetShader)
	if c.Conversion.TargetShader == "" {
		c.Conversion.TargetShader = defaultTargetShader
	}
	c.Conversion.ApprovedShaders = normalizeStringList(c.Conversion.ApprovedShaders)
	if len(c.Conversion.ApprovedShaders) == 0 {
		c.Conversion.ApprovedShaders = append([]string(nil), defaultApprovedShaders...)
	}
	if c.Conversion.Workers <= 0 {
		c.Conversion.Workers = defaultWorkers
	}
	if len(c.Conversion.MaterialOverrides) > 0 {
		overrides := make(map[string]MaterialOverride, len(c.Conversion.MaterialOverrides))
		for id, override := range c.Conversion.MaterialOverrides {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			override.TargetShader = strings.TrimSpace(override.TargetShader)
			overrides[id] = override
		}
		c.Conversion.MaterialOverrides = overrides
	}
}

func (c *Config) normalizeAnimation() {
	c.Animation.ProxyClips = normalizeStringList(c.Animation.ProxyClips)
	if len(c.Animation.Overrides) > 0 {
		overrides := make(map[string]string, len(c.Animation.Overrides))
		for source, target := range c.Animation.Overrides {
			source = strings.TrimSpace(source)
			target = strings.TrimSpace(target)
			if source == "" {
				continue
			}
			overrides[source] = target
		}
		c.Animation.Overrides = overrides
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeStringList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
