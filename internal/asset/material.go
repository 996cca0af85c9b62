package asset

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Well-known material property slots.
const (
	SlotMainTex       = "_MainTex"
	SlotColor         = "_Color"
	SlotEmissionMap   = "_EmissionMap"
	SlotEmissionColor = "_EmissionColor"
	SlotEmissionMap2  = "_EmissionMap2"
	SlotEmission2     = "_EmissionColor2"
)

// Color is a linear RGBA color with components in [0,1].
type Color struct {
	R float32 `json:"r" yaml:"r"`
	G float32 `json:"g" yaml:"g"`
	B float32 `json:"b" yaml:"b"`
	A float32 `json:"a" yaml:"a"`
}

// White is the multiplicative identity.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Black is the additive identity.
var Black = Color{A: 1}

// ParseColor accepts #RGB, #RRGGBB and #RRGGBBAA notations.
func ParseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", value)
	}
	raw, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", value, err)
	}
	return Color{
		R: float32((raw>>24)&0xff) / 255,
		G: float32((raw>>16)&0xff) / 255,
		B: float32((raw>>8)&0xff) / 255,
		A: float32(raw&0xff) / 255,
	}, nil
}

// Hex renders the color as #RRGGBBAA.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B), to8(c.A))
}

// NRGBA converts the color to an 8-bit image color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// Material binds a shader to texture, color, and scalar properties.
type Material struct {
	Meta     `yaml:",inline"`
	Shader   string             `json:"shader" yaml:"shader"`
	Textures map[string]ID      `json:"textures,omitempty" yaml:"textures,omitempty"`
	Colors   map[string]Color   `json:"colors,omitempty" yaml:"colors,omitempty"`
	Floats   map[string]float32 `json:"floats,omitempty" yaml:"floats,omitempty"`
	Keywords []string           `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

func (*Material) Kind() Kind { return KindMaterial }

// Texture returns the texture bound to slot, if any.
func (m *Material) Texture(slot string) (ID, bool) {
	id, ok := m.Textures[slot]
	if !ok || id.IsZero() {
		return "", false
	}
	return id, true
}

// Color returns the color bound to slot or fallback.
func (m *Material) Color(slot string, fallback Color) Color {
	if c, ok := m.Colors[slot]; ok {
		return c
	}
	return fallback
}

// HasKeyword reports whether the keyword is enabled.
func (m *Material) HasKeyword(keyword string) bool {
	for _, k := range m.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// Texture is an RGBA image asset.
type Texture struct {
	Meta   `yaml:",inline"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Pixels []byte `json:"pixels" yaml:"-"`
}

func (*Texture) Kind() Kind { return KindTexture }

// Image wraps the pixel buffer without copying.
func (t *Texture) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    t.Pixels,
		Stride: t.Width * 4,
		Rect:   image.Rect(0, 0, t.Width, t.Height),
	}
}

// TextureFromImage copies img into a new texture with the given name.
func TextureFromImage(name string, img image.Image) *Texture {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return &Texture{
		Meta:   Meta{Name: name},
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: dst.Pix,
	}
}

// SolidTexture builds a width×height texture filled with c.
func SolidTexture(name string, width, height int, c Color) *Texture {
	px := c.NRGBA()
	pixels := make([]byte, width*height*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i] = px.R
		pixels[i+1] = px.G
		pixels[i+2] = px.B
		pixels[i+3] = px.A
	}
	return &Texture{Meta: Meta{Name: name}, Width: width, Height: height, Pixels: pixels}
}
