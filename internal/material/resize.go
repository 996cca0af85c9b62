package material

import (
	"image"

	"golang.org/x/image/draw"
)

// FitWithin returns the size of src scaled down so its longest edge is at
// most maxDim, preserving aspect ratio. It reports false when no resize is
// needed.
func FitWithin(size image.Point, maxDim int) (image.Point, bool) {
	if maxDim <= 0 || (size.X <= maxDim && size.Y <= maxDim) {
		return size, false
	}
	if size.X >= size.Y {
		h := size.Y * maxDim / size.X
		if h < 1 {
			h = 1
		}
		return image.Pt(maxDim, h), true
	}
	w := size.X * maxDim / size.Y
	if w < 1 {
		w = 1
	}
	return image.Pt(w, maxDim), true
}

// Downscale resizes img to fit within maxDim using Catmull-Rom filtering.
// Images already within the limit are returned unchanged.
func Downscale(img image.Image, maxDim int) image.Image {
	target, ok := FitWithin(img.Bounds().Size(), maxDim)
	if !ok {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, target.X, target.Y))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
