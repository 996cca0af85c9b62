package testsupport

import (
	"path/filepath"
	"testing"

	"rigconvert/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StorePath = filepath.Join(base, "store", "assets.db")
	cfgVal.Paths.LockPath = filepath.Join(base, "store", "assets.db.lock")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Conversion.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithBakeTextures toggles texture baking.
func WithBakeTextures(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.BakeTextures = enabled
	}
}

// WithTextureMaxDimension sets the texture size cap.
func WithTextureMaxDimension(dim int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.TextureMaxDimension = dim
	}
}

// WithProxyClips adds clip ids to the proxy denylist.
func WithProxyClips(ids ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Animation.ProxyClips = append(b.cfg.Animation.ProxyClips, ids...)
	}
}

// WithClipOverride maps a source clip to a replacement clip.
func WithClipOverride(source, target string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Animation.Overrides == nil {
			b.cfg.Animation.Overrides = make(map[string]string)
		}
		b.cfg.Animation.Overrides[source] = target
	}
}

// WithMaterialOverride sets a per-material policy override.
func WithMaterialOverride(id string, override config.MaterialOverride) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Conversion.MaterialOverrides == nil {
			b.cfg.Conversion.MaterialOverrides = make(map[string]config.MaterialOverride)
		}
		b.cfg.Conversion.MaterialOverrides[id] = override
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Paths.StorePath))
}
