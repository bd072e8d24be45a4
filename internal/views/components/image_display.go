package components

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ImageDisplay shows one pre-fitted bitmap centred in the viewport and
// reports every viewport size change. Bitmaps and viewport sizes are in
// device pixels; the canvas scale converts them to and from Fyne units.
type ImageDisplay struct {
	container   *fyne.Container
	image       *canvas.Image
	placeholder *widget.Label
	bitmap      image.Point
	scale       func() float32
}

// NewImageDisplay creates the display; onResize receives the viewport size in pixels
func NewImageDisplay(onResize func(width, height int)) *ImageDisplay {
	id := &ImageDisplay{}
	id.scale = id.canvasScale

	id.image = canvas.NewImageFromImage(nil)
	id.image.FillMode = canvas.ImageFillContain
	id.image.ScaleMode = canvas.ImageScaleSmooth
	id.image.Hide()

	id.placeholder = widget.NewLabel("Open an image to begin")
	id.placeholder.Alignment = fyne.TextAlignCenter

	layout := &viewportLayout{display: id, onResize: onResize}
	id.container = container.New(layout, id.placeholder, id.image)

	return id
}

// ShowImage replaces the displayed bitmap; it is already fitted to the viewport
func (id *ImageDisplay) ShowImage(img image.Image, zoomPercent float64) {
	id.bitmap = img.Bounds().Size()

	id.image.Image = img
	id.image.Show()
	id.placeholder.Hide()
	id.image.Refresh()
	id.container.Refresh()
}

// ClearImage shows the placeholder again
func (id *ImageDisplay) ClearImage() {
	id.image.Image = nil
	id.image.Hide()
	id.placeholder.Show()
	id.container.Refresh()
}

// GetContainer returns the display's canvas object
func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}

// canvasScale is the pixel density of the canvas showing the display, 1 when
// the display is not on a canvas yet
func (id *ImageDisplay) canvasScale() float32 {
	app := fyne.CurrentApp()
	if app == nil || len(app.Driver().AllWindows()) == 0 {
		return 1
	}
	c := app.Driver().CanvasForObject(id.container)
	if c == nil || c.Scale() <= 0 {
		return 1
	}
	return c.Scale()
}

// viewportLayout centres the bitmap so that each bitmap pixel covers one
// device pixel. Its minimum size is tiny so the image never stops the window
// from shrinking.
type viewportLayout struct {
	display  *ImageDisplay
	onResize func(width, height int)
	last     image.Point
}

func (l *viewportLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	scale := l.display.scale()

	for _, obj := range objects {
		if obj != l.display.image {
			obj.Resize(size)
			obj.Move(fyne.NewPos(0, 0))
			continue
		}

		s := fyne.NewSize(
			min(float32(l.display.bitmap.X)/scale, size.Width),
			min(float32(l.display.bitmap.Y)/scale, size.Height),
		)
		obj.Resize(s)
		obj.Move(fyne.NewPos((size.Width-s.Width)/2, (size.Height-s.Height)/2))
	}

	pixels := image.Pt(int(size.Width*scale), int(size.Height*scale))
	if pixels != l.last {
		l.last = pixels
		if l.onResize != nil {
			l.onResize(pixels.X, pixels.Y)
		}
	}
}

func (l *viewportLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(1, 1)
}
