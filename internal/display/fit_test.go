package display

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitToViewport_ScalesDownByBindingRatio(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 300))

	scaled, zoom := FitToViewport(src, NewSize(200, 150))
	assert.Equal(t, NewSize(200, 150), SizeOf(scaled))
	assert.InDelta(t, 50.0, zoom, 1e-9)
}

func TestFitToViewport_FitsUnscaled(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))

	scaled, zoom := FitToViewport(src, NewSize(200, 150))
	assert.Same(t, src, scaled)
	assert.Equal(t, NewSize(100, 50), SizeOf(scaled))
	assert.Equal(t, 100.0, zoom)
}

func TestFitToViewport_ExactFitIsUnscaled(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 200, 150))

	_, zoom := FitToViewport(src, NewSize(200, 150))
	assert.Equal(t, 100.0, zoom)
}

func TestFitToViewport_OneDimensionOverflows(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 100))

	scaled, zoom := FitToViewport(src, NewSize(150, 400))
	assert.Equal(t, NewSize(150, 50), SizeOf(scaled))
	assert.InDelta(t, 50.0, zoom, 1e-9)
}

func TestFitToViewport_NeverExceedsViewport(t *testing.T) {
	viewports := []Size{{200, 150}, {99, 37}, {1, 1}, {640, 10}, {13, 480}}
	bitmaps := []Size{{400, 300}, {1000, 7}, {7, 1000}, {333, 333}, {641, 11}}

	for _, vp := range viewports {
		for _, bm := range bitmaps {
			src := image.NewRGBA(image.Rect(0, 0, bm.Width, bm.Height))
			scaled, zoom := FitToViewport(src, vp)

			got := SizeOf(scaled)
			assert.True(t, got.Fits(vp), "bitmap %v viewport %v scaled %v", bm, vp, got)
			assert.GreaterOrEqual(t, got.Width, 1)
			assert.GreaterOrEqual(t, got.Height, 1)
			if bm.Fits(vp) {
				assert.Equal(t, 100.0, zoom)
			} else {
				assert.Less(t, zoom, 100.0)
			}
		}
	}
}

func TestZoomFor_MatchesFitToViewport(t *testing.T) {
	viewports := []Size{{200, 150}, {99, 37}, {1, 1}, {0, 0}}
	bitmaps := []Size{{400, 300}, {100, 50}, {1000, 7}, {200, 150}}

	for _, vp := range viewports {
		for _, bm := range bitmaps {
			_, zoom := FitToViewport(image.NewGray(image.Rect(0, 0, bm.Width, bm.Height)), vp)
			assert.Equal(t, zoom, ZoomFor(bm, vp), "bitmap %v viewport %v", bm, vp)
		}
	}

	assert.InDelta(t, 50.0, ZoomFor(NewSize(400, 300), NewSize(200, 150)), 1e-9)
	assert.Equal(t, FullZoom, ZoomFor(NewSize(0, 0), NewSize(10, 10)))
}

func TestFitToViewport_Nil(t *testing.T) {
	img, zoom := FitToViewport(nil, NewSize(10, 10))
	assert.Nil(t, img)
	assert.Equal(t, 100.0, zoom)
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 120))
	icon := Thumbnail(src, 48)
	assert.Equal(t, NewSize(48, 48), SizeOf(icon))
	assert.Nil(t, Thumbnail(src, 0))
}
