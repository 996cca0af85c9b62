package pipeline

import (
	"rigconvert/internal/asset"
	"rigconvert/internal/config"
	"rigconvert/internal/material"
)

// Options configures a conversion run.
type Options struct {
	// OutputRoot is the store directory receiving converted artifacts.
	OutputRoot string
	Policy     material.Policy
	// ProxyClips are never converted and keep their original references.
	ProxyClips []asset.ID
	// ClipOverrides replace state motions for the given source clips and win
	// over converted clips.
	ClipOverrides map[asset.ID]asset.ID
	// Workers bounds parallel material computation.
	Workers int
	// Compose bakes material textures; nil uses material.DefaultCompose.
	Compose material.ComposeFunc
}

// OptionsFromConfig maps configuration onto run options.
func OptionsFromConfig(cfg *config.Config) Options {
	conv := cfg.Conversion
	policy := material.Policy{
		TargetShader:        conv.TargetShader,
		ApprovedShaders:     append([]string(nil), conv.ApprovedShaders...),
		TextureMaxDimension: conv.TextureMaxDimension,
		BrightnessScale:     conv.BrightnessScale,
		BakeTextures:        conv.BakeTextures,
	}
	if len(conv.MaterialOverrides) > 0 {
		policy.Overrides = make(map[asset.ID]material.Policy, len(conv.MaterialOverrides))
		for id, override := range conv.MaterialOverrides {
			p := policy
			p.Overrides = nil
			if override.TargetShader != "" {
				p.TargetShader = override.TargetShader
			}
			if override.TextureMaxDimension != nil {
				p.TextureMaxDimension = *override.TextureMaxDimension
			}
			if override.BrightnessScale != nil {
				p.BrightnessScale = *override.BrightnessScale
			}
			if override.BakeTextures != nil {
				p.BakeTextures = *override.BakeTextures
			}
			policy.Overrides[asset.ID(id)] = p
		}
	}

	opts := Options{
		OutputRoot: cfg.Paths.OutputRoot,
		Policy:     policy,
		Workers:    conv.Workers,
	}
	for _, id := range cfg.Animation.ProxyClips {
		opts.ProxyClips = append(opts.ProxyClips, asset.ID(id))
	}
	if len(cfg.Animation.Overrides) > 0 {
		opts.ClipOverrides = make(map[asset.ID]asset.ID, len(cfg.Animation.Overrides))
		for source, target := range cfg.Animation.Overrides {
			opts.ClipOverrides[asset.ID(source)] = asset.ID(target)
		}
	}
	return opts
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return 1
	}
	return o.Workers
}
