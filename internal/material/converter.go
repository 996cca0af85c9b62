package material

import (
	"context"
	"fmt"
	"image"
	"strconv"

	"rigconvert/internal/asset"
)

// Result is the outcome of converting one material. Nothing in it has been
// persisted; the main texture slot of Material is left for the caller to bind
// once Baked or Resized is saved.
type Result struct {
	Source   *asset.Material
	Material *asset.Material
	// Baked is the composed main texture, one per converted material.
	Baked *asset.Texture
	// Resized is a downscaled copy of the source main texture, shared by every
	// material with the same ResizedKey.
	Resized    *asset.Texture
	ResizedKey asset.Meta
	Policy     Policy
}

// Converter turns materials into approved-shader materials.
type Converter struct {
	store   asset.Store
	compose ComposeFunc
}

// NewConverter reads source textures from store. A nil compose uses
// DefaultCompose.
func NewConverter(store asset.Store, compose ComposeFunc) *Converter {
	if compose == nil {
		compose = DefaultCompose
	}
	return &Converter{store: store, compose: compose}
}

// Convert computes the converted material for m under policy. It is safe to
// call concurrently.
func (c *Converter) Convert(ctx context.Context, m *asset.Material, policy Policy) (*Result, error) {
	if m == nil {
		return nil, fmt.Errorf("convert: nil material")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}

	converted := &asset.Material{
		Meta:     asset.Meta{Name: m.Name},
		Shader:   policy.TargetShader,
		Textures: map[string]asset.ID{},
		Colors:   map[string]asset.Color{},
	}
	result := &Result{Source: m, Material: converted, Policy: policy}

	if policy.BakeTextures {
		baked, err := c.bake(ctx, m, policy)
		if err != nil {
			return nil, err
		}
		converted.Colors[asset.SlotColor] = asset.White
		result.Baked = baked
		return result, nil
	}

	converted.Colors[asset.SlotColor] = m.Color(asset.SlotColor, asset.White)
	texID, ok := m.Texture(asset.SlotMainTex)
	if !ok {
		return result, nil
	}
	tex, err := c.loadTexture(ctx, asset.SlotMainTex, texID)
	if err != nil {
		return nil, err
	}
	if _, needsResize := FitWithin(image.Pt(tex.Width, tex.Height), policy.TextureMaxDimension); !needsResize {
		converted.Textures[asset.SlotMainTex] = texID
		return result, nil
	}
	img, err := textureImage(tex)
	if err != nil {
		return nil, err
	}
	result.Resized = asset.TextureFromImage(tex.Name, Downscale(img, policy.TextureMaxDimension))
	result.ResizedKey = ResizeKey(tex.Meta, policy.TextureMaxDimension)
	return result, nil
}

// ResizeKey identifies a source texture downscaled to maxDim. Materials whose
// policies share a limit share the resized copy; different limits never do.
func ResizeKey(tex asset.Meta, maxDim int) asset.Meta {
	return asset.Meta{ID: tex.ID + asset.ID("@"+strconv.Itoa(maxDim)), Name: tex.Name}
}

func (c *Converter) bake(ctx context.Context, m *asset.Material, policy Policy) (*asset.Texture, error) {
	base, err := c.layer(ctx, m, asset.SlotMainTex, asset.SlotColor, asset.White)
	if err != nil {
		return nil, err
	}
	emission, err := c.layer(ctx, m, asset.SlotEmissionMap, asset.SlotEmissionColor, asset.Black)
	if err != nil {
		return nil, err
	}
	emission2, err := c.layer(ctx, m, asset.SlotEmissionMap2, asset.SlotEmission2, asset.Black)
	if err != nil {
		return nil, err
	}
	img, err := c.compose(Sources{Base: base, Emission: emission, Emission2: emission2}, policy)
	if err != nil {
		return nil, fmt.Errorf("compose texture: %w", err)
	}
	if img == nil {
		return nil, fmt.Errorf("compose texture: no image produced")
	}
	return asset.TextureFromImage(m.Name, Downscale(img, policy.TextureMaxDimension)), nil
}

func (c *Converter) layer(ctx context.Context, m *asset.Material, texSlot, colorSlot string, fallback asset.Color) (Layer, error) {
	layer := Layer{Tint: m.Color(colorSlot, fallback)}
	id, ok := m.Texture(texSlot)
	if !ok {
		return layer, nil
	}
	tex, err := c.loadTexture(ctx, texSlot, id)
	if err != nil {
		return Layer{}, err
	}
	img, err := textureImage(tex)
	if err != nil {
		return Layer{}, err
	}
	layer.Image = img
	return layer, nil
}

func (c *Converter) loadTexture(ctx context.Context, slot string, id asset.ID) (*asset.Texture, error) {
	tex, err := asset.Load[*asset.Texture](ctx, c.store, id)
	if err != nil {
		return nil, fmt.Errorf("load %s texture %s: %w", slot, id, err)
	}
	return tex, nil
}

func textureImage(tex *asset.Texture) (image.Image, error) {
	want := tex.Width * tex.Height * 4
	if tex.Width <= 0 || tex.Height <= 0 || len(tex.Pixels) != want {
		return nil, fmt.Errorf("texture %s is malformed: %dx%d with %d bytes", asset.Describe(tex), tex.Width, tex.Height, len(tex.Pixels))
	}
	return tex.Image(), nil
}

// BindMainTexture points the converted material's main slot at id.
func (r *Result) BindMainTexture(id asset.ID) {
	if id.IsZero() {
		return
	}
	r.Material.Textures[asset.SlotMainTex] = id
}
