package material

import (
	"errors"
	"image"
	"image/color"

	"rigconvert/internal/asset"
)

// fallbackSize is the edge length of a baked texture when the material has
// no texture slots at all.
const fallbackSize = 4

// Layer is one sampled texture with its tint. A nil Image samples as white.
type Layer struct {
	Image image.Image
	Tint  asset.Color
}

// Sources are the material slots fed to a ComposeFunc.
type Sources struct {
	Base      Layer
	Emission  Layer
	Emission2 Layer
}

// ComposeFunc bakes material sources into one image.
type ComposeFunc func(src Sources, policy Policy) (*image.NRGBA, error)

// DefaultCompose computes base*tint*brightness + emission*tint + emission2*tint
// per pixel, clamped. Output takes the size of the largest source image.
func DefaultCompose(src Sources, policy Policy) (*image.NRGBA, error) {
	if policy.BrightnessScale <= 0 {
		return nil, errors.New("brightness scale must be positive")
	}
	size := outputSize(src.Base.Image, src.Emission.Image, src.Emission2.Image)
	out := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	brightness := float32(policy.BrightnessScale)

	for y := 0; y < size.Y; y++ {
		v := (float32(y) + 0.5) / float32(size.Y)
		for x := 0; x < size.X; x++ {
			u := (float32(x) + 0.5) / float32(size.X)
			base := sample(src.Base, u, v)
			e1 := sample(src.Emission, u, v)
			e2 := sample(src.Emission2, u, v)
			px := asset.Color{
				R: base.R*brightness + e1.R + e2.R,
				G: base.G*brightness + e1.G + e2.G,
				B: base.B*brightness + e1.B + e2.B,
				A: base.A,
			}
			out.SetNRGBA(x, y, px.NRGBA())
		}
	}
	return out, nil
}

func outputSize(images ...image.Image) image.Point {
	var best image.Point
	for _, img := range images {
		if img == nil {
			continue
		}
		b := img.Bounds().Size()
		if b.X*b.Y > best.X*best.Y {
			best = b
		}
	}
	if best.X <= 0 || best.Y <= 0 {
		return image.Pt(fallbackSize, fallbackSize)
	}
	return best
}

// sample reads the layer at normalized coordinates with nearest filtering and
// applies the tint.
func sample(layer Layer, u, v float32) asset.Color {
	texel := asset.White
	if layer.Image != nil {
		b := layer.Image.Bounds()
		if b.Dx() > 0 && b.Dy() > 0 {
			x := b.Min.X + clampIndex(int(u*float32(b.Dx())), b.Dx())
			y := b.Min.Y + clampIndex(int(v*float32(b.Dy())), b.Dy())
			texel = toColor(layer.Image.At(x, y))
		}
	}
	return asset.Color{
		R: texel.R * layer.Tint.R,
		G: texel.G * layer.Tint.G,
		B: texel.B * layer.Tint.B,
		A: texel.A * layer.Tint.A,
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func toColor(c color.Color) asset.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return asset.Color{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}
