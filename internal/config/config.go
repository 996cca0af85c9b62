package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains store and log locations.
type Paths struct {
	StorePath  string `toml:"store_path"`
	OutputRoot string `toml:"output_root"`
	LogDir     string `toml:"log_dir"`
	LockPath   string `toml:"lock_path"`
}

// MaterialOverride replaces parts of the conversion policy for one material.
// Unset fields inherit from [conversion].
type MaterialOverride struct {
	TargetShader        string   `toml:"target_shader"`
	TextureMaxDimension *int     `toml:"texture_max_dimension"`
	BrightnessScale     *float64 `toml:"brightness_scale"`
	BakeTextures        *bool    `toml:"bake_textures"`
}

// Conversion contains the material conversion policy.
type Conversion struct {
	TargetShader    string   `toml:"target_shader"`
	ApprovedShaders []string `toml:"approved_shaders"`
	// TextureMaxDimension caps the longest texture edge; 0 disables resizing.
	TextureMaxDimension int     `toml:"texture_max_dimension"`
	BrightnessScale     float64 `toml:"brightness_scale"`
	BakeTextures        bool    `toml:"bake_textures"`
	// Workers bounds parallel material computation; commits stay sequential.
	Workers           int                         `toml:"workers"`
	MaterialOverrides map[string]MaterialOverride `toml:"material_overrides"`
}

// Animation contains clip handling settings.
type Animation struct {
	// ProxyClips lists clip ids that must never be converted.
	ProxyClips []string `toml:"proxy_clips"`
	// Overrides maps source clip ids to replacement clip ids for animator states.
	Overrides map[string]string `toml:"overrides"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// RunLogs mirrors every conversion run into log_dir/runs/<run id>.jsonl.
	RunLogs bool `toml:"run_logs"`
	// RetentionDays prunes run logs older than this many days. Zero keeps them.
	RetentionDays int `toml:"retention_days"`
}

// Config encapsulates all configuration values for rigconvert.
//
// Configuration sections:
//   - Paths: asset store database, output root inside the store, logs, lock file
//   - Conversion: target shader, approved shaders, texture limits, overrides
//   - Animation: proxy clip denylist and animator override entries
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Conversion Conversion `toml:"conversion"`
	Animation  Animation  `toml:"animation"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/rigconvert/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %q is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("rigconvert.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories holding the store, lock, and logs.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Paths.StorePath), filepath.Dir(c.Paths.LockPath), c.Paths.LogDir}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// IsApprovedShader reports whether shader is already platform-approved.
func (c *Config) IsApprovedShader(shader string) bool {
	shader = strings.TrimSpace(shader)
	for _, approved := range c.Conversion.ApprovedShaders {
		if strings.EqualFold(approved, shader) {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
