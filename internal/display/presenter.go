package display

import (
	"image"

	"image-workbench/internal/logger"
	"image-workbench/internal/models"
)

// Surface is the widget that renders the fitted bitmap
type Surface interface {
	ShowImage(img image.Image, zoomPercent float64)
	ClearImage()
}

// Presenter keeps the last bitmap and the viewport so that a resize can refit
// without re-running any transform. It is only used from the UI goroutine.
type Presenter struct {
	surface  Surface
	logger   logger.Logger
	bitmap   image.Image
	viewport Size
	zoom     float64
}

// NewPresenter creates a presenter for surface with an initial viewport
func NewPresenter(surface Surface, viewport Size, log logger.Logger) *Presenter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Presenter{
		surface:  surface,
		logger:   log,
		viewport: viewport,
		zoom:     FullZoom,
	}
}

// Show converts buf and displays it fitted to the current viewport
func (p *Presenter) Show(buf *models.Buffer) error {
	bitmap, err := ToDisplayable(buf)
	if err != nil {
		return err
	}
	p.ShowBitmap(bitmap)
	return nil
}

// ShowBitmap displays an already converted bitmap
func (p *Presenter) ShowBitmap(bitmap image.Image) {
	p.bitmap = bitmap
	p.refit()
}

// OnViewportResized refits the last bitmap to the new viewport
func (p *Presenter) OnViewportResized(size Size) {
	if size == p.viewport {
		return
	}
	p.viewport = size
	p.refit()
}

// Clear forgets the bitmap
func (p *Presenter) Clear() {
	p.bitmap = nil
	p.zoom = FullZoom
	if p.surface != nil {
		p.surface.ClearImage()
	}
}

// Bitmap returns the unscaled bitmap being displayed, or nil
func (p *Presenter) Bitmap() image.Image {
	return p.bitmap
}

// Viewport returns the last known viewport size
func (p *Presenter) Viewport() Size {
	return p.viewport
}

// Zoom returns the zoom percentage of the displayed bitmap
func (p *Presenter) Zoom() float64 {
	return p.zoom
}

func (p *Presenter) refit() {
	if p.bitmap == nil {
		return
	}

	scaled, zoom := FitToViewport(p.bitmap, p.viewport)
	p.zoom = zoom

	p.logger.Debug("Display", "bitmap fitted to viewport", map[string]interface{}{
		"viewport": p.viewport,
		"bitmap":   SizeOf(p.bitmap),
		"scaled":   SizeOf(scaled),
		"zoom":     zoom,
	})

	if p.surface != nil {
		p.surface.ShowImage(scaled, zoom)
	}
}
