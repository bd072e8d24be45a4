package display

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// FullZoom is the zoom reported for an unscaled bitmap
const FullZoom = 100.0

// Size is a viewport or bitmap size in pixels
type Size struct {
	Width  int
	Height int
}

// NewSize creates a new size
func NewSize(width, height int) Size {
	return Size{Width: width, Height: height}
}

// SizeOf returns the pixel size of img
func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

// Fits reports whether s fits inside other in both dimensions
func (s Size) Fits(other Size) bool {
	return s.Width <= other.Width && s.Height <= other.Height
}

// ZoomFor returns the zoom FitToViewport reports for a bitmap of the given
// size, without resampling anything.
func ZoomFor(bitmap, viewport Size) float64 {
	if bitmap.Width <= 0 || bitmap.Height <= 0 || bitmap.Fits(viewport) {
		return FullZoom
	}
	return fitRatio(bitmap, viewport) * 100
}

// FitToViewport scales bitmap down with Catmull-Rom resampling so that it fits
// entirely inside viewport, preserving aspect ratio. The zoom is the binding
// ratio min(vh/bh, vw/bw) as a percentage, or exactly 100 when the bitmap
// already fits and is returned unscaled.
func FitToViewport(bitmap image.Image, viewport Size) (image.Image, float64) {
	if bitmap == nil {
		return nil, FullZoom
	}

	src := SizeOf(bitmap)
	if src.Width <= 0 || src.Height <= 0 || src.Fits(viewport) {
		return bitmap, FullZoom
	}

	vw := max(viewport.Width, 1)
	vh := max(viewport.Height, 1)
	ratio := fitRatio(src, viewport)

	dstW := clamp(int(math.Round(float64(src.Width)*ratio)), 1, vw)
	dstH := clamp(int(math.Round(float64(src.Height)*ratio)), 1, vh)

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), bitmap, bitmap.Bounds(), draw.Src, nil)

	return dst, ZoomFor(src, viewport)
}

// fitRatio is min(vh/bh, vw/bw) with the viewport clamped to at least 1x1
func fitRatio(bitmap, viewport Size) float64 {
	vw := max(viewport.Width, 1)
	vh := max(viewport.Height, 1)
	return math.Min(float64(vh)/float64(bitmap.Height), float64(vw)/float64(bitmap.Width))
}

// Thumbnail produces the list icon for an image, cropped to a square
func Thumbnail(bitmap image.Image, side int) image.Image {
	if bitmap == nil || side <= 0 {
		return nil
	}
	return imaging.Thumbnail(bitmap, side, side, imaging.Lanczos)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
