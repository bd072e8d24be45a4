package controllers

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"image-workbench/internal/dispatch"
	"image-workbench/internal/display"
	"image-workbench/internal/gui/uithread"
	"image-workbench/internal/models"
	"image-workbench/internal/services"
)

type fakeView struct {
	names      []string
	selected   int
	status     []string
	zoom       float64
	processing []bool
	errors     []string
	shown      []display.Size
	cleared    int
}

func (v *fakeView) ShowImage(img image.Image, zoom float64) {
	v.shown = append(v.shown, display.SizeOf(img))
}
func (v *fakeView) ClearImage() { v.cleared++ }

func (v *fakeView) SetImages(entries []*models.ImageEntry, selected int) {
	v.names = v.names[:0]
	for _, e := range entries {
		v.names = append(v.names, e.Name)
	}
	v.selected = selected
}

func (v *fakeView) SetStatus(text string) { v.status = append(v.status, text) }
func (v *fakeView) SetZoom(zoom float64) { v.zoom = zoom }
func (v *fakeView) SetProcessing(active bool) { v.processing = append(v.processing, active) }
func (v *fakeView) ShowError(title string, _ error) { v.errors = append(v.errors, title) }

func (v *fakeView) lastStatus() string {
	if len(v.status) == 0 {
		return ""
	}
	return v.status[len(v.status)-1]
}

type memoryCodec map[string]*models.Buffer

func (c memoryCodec) Decode(path string) (*models.Buffer, error) {
	if buf, ok := c[path]; ok {
		return buf, nil
	}
	return nil, errors.New("no such file")
}

func (c memoryCodec) Encode(path string, buf *models.Buffer) error {
	c[path] = buf
	return nil
}

type fixture struct {
	queue      *uithread.Coordinator
	controller *MainController
	view       *fakeView
	calls      *int32
}

func newFixture(t *testing.T, transform dispatch.Transform) *fixture {
	t.Helper()

	var calls int32
	counted := func(b *models.Buffer) (*models.Buffer, error) {
		atomic.AddInt32(&calls, 1)
		return transform(b)
	}

	codec := memoryCodec{
		"/img/wide.png":  models.NewRGBBuffer(300, 400),
		"/img/small.png": models.NewRGBBuffer(10, 20),
	}
	queue := uithread.NewCoordinator(nil, nil)
	images := services.NewImageService(codec, models.NewImageList(), models.NewSession(""), 8, nil)
	processing := services.NewProcessingService(dispatch.NewDispatcher(queue, nil, nil), "grayscale", counted, nil)

	c := NewMainController(images, processing, queue, display.NewSize(200, 150), nil)
	view := &fakeView{selected: -1}
	c.SetView(view)

	return &fixture{queue: queue, controller: c, view: view, calls: &calls}
}

func (f *fixture) open(t *testing.T, paths ...string) {
	t.Helper()
	f.controller.OpenImages(context.Background(), paths)
	f.controller.WaitForLoads()
	f.queue.Drain()
}

func (f *fixture) settle() {
	f.controller.processing.Wait()
	f.queue.Drain()
}

func toGray(b *models.Buffer) (*models.Buffer, error) {
	return models.NewGrayBuffer(b.Height(), b.Width()), nil
}

func TestMainController_OpenSelectsLastImage(t *testing.T) {
	f := newFixture(t, toGray)

	f.open(t, "/img/small.png", "/img/wide.png")

	assert.Equal(t, []string{"small.png", "wide.png"}, f.view.names)
	assert.Equal(t, 1, f.view.selected)
	assert.Equal(t, display.NewSize(200, 150), f.view.shown[len(f.view.shown)-1])
	assert.InDelta(t, 50.0, f.view.zoom, 1e-9)
	assert.Equal(t, "Opened 2 of 2 image(s)", f.view.lastStatus())
}

func TestMainController_OpenFailureIsReported(t *testing.T) {
	f := newFixture(t, toGray)

	f.open(t, "/img/missing.png")

	assert.Equal(t, []string{"Image load failed"}, f.view.errors)
	assert.Empty(t, f.view.names)
	assert.Equal(t, "Opened 0 of 1 image(s)", f.view.lastStatus())
}

func TestMainController_ConvertAddsResultEntry(t *testing.T) {
	f := newFixture(t, toGray)
	f.open(t, "/img/wide.png")

	f.controller.ConvertToGrayscale()
	assert.Equal(t, "Converting wide.png to grayscale...", f.view.lastStatus())

	f.settle()

	assert.Equal(t, []string{"wide.png", "wide.png (grayscale)"}, f.view.names)
	assert.Equal(t, 1, f.view.selected)
	assert.Contains(t, f.view.lastStatus(), "Done in")
	assert.Contains(t, f.view.lastStatus(), "(1 converted, 0 failed)")
	assert.Equal(t, []bool{false, true, false}, f.view.processing)

	result := f.controller.images.List().Selected()
	assert.True(t, result.Buffer.IsGray())
}

func TestMainController_ConvertGuardWhileBusy(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, func(b *models.Buffer) (*models.Buffer, error) {
		<-release
		return toGray(b)
	})
	f.open(t, "/img/small.png")

	f.controller.ConvertToGrayscale()
	f.controller.ConvertToGrayscale()
	assert.Equal(t, "A conversion is already running", f.view.lastStatus())

	close(release)
	f.settle()

	assert.Equal(t, int32(1), atomic.LoadInt32(f.calls))
	assert.Len(t, f.view.names, 2)
}

func TestMainController_ConvertFailure(t *testing.T) {
	f := newFixture(t, func(*models.Buffer) (*models.Buffer, error) {
		return nil, errors.New("unsupported depth")
	})
	f.open(t, "/img/small.png")

	f.controller.ConvertToGrayscale()
	f.settle()

	assert.Equal(t, []string{"grayscale failed"}, f.view.errors)
	assert.Equal(t, "grayscale failed: unsupported depth (0 converted, 1 failed)", f.view.lastStatus())
	assert.Equal(t, []string{"small.png"}, f.view.names)
	assert.Equal(t, []bool{false, true, false}, f.view.processing)
}

func TestMainController_ConvertWithoutSelection(t *testing.T) {
	f := newFixture(t, toGray)

	f.controller.ConvertToGrayscale()
	f.settle()

	assert.Equal(t, "Select an image first", f.view.lastStatus())
	assert.Zero(t, atomic.LoadInt32(f.calls))
}

func TestMainController_ResizeRefitsWithoutTransform(t *testing.T) {
	f := newFixture(t, toGray)
	f.open(t, "/img/wide.png")
	shown := len(f.view.shown)

	f.controller.ViewportResized(display.NewSize(800, 600))

	assert.Len(t, f.view.shown, shown+1)
	assert.Equal(t, display.NewSize(400, 300), f.view.shown[shown])
	assert.Equal(t, 100.0, f.view.zoom)
	assert.Zero(t, atomic.LoadInt32(f.calls))
}

func TestMainController_SaveSelected(t *testing.T) {
	f := newFixture(t, toGray)
	f.open(t, "/img/small.png")

	f.controller.SaveSelected(context.Background(), "/out/small.png")

	assert.Equal(t, "Saved /out/small.png", f.view.lastStatus())
	assert.Equal(t, "/out", f.controller.images.Session().LastDir())
}

func TestMainController_CloseSelectedShowsNeighbour(t *testing.T) {
	f := newFixture(t, toGray)
	f.open(t, "/img/small.png", "/img/wide.png")

	f.controller.CloseSelected()

	assert.Equal(t, []string{"small.png"}, f.view.names)
	assert.Equal(t, 0, f.view.selected)
	assert.Equal(t, display.NewSize(20, 10), f.view.shown[len(f.view.shown)-1])
	assert.Equal(t, 100.0, f.view.zoom)
	assert.Zero(t, f.view.cleared)
	assert.Equal(t, "Closed wide.png", f.view.lastStatus())
}

func TestMainController_CloseLastImageClearsDisplay(t *testing.T) {
	f := newFixture(t, toGray)
	f.open(t, "/img/small.png")

	f.controller.CloseSelected()

	assert.Empty(t, f.view.names)
	assert.Equal(t, -1, f.view.selected)
	assert.Equal(t, 1, f.view.cleared)
	assert.Nil(t, f.controller.presenter.Bitmap())

	f.controller.CloseSelected()
	assert.Equal(t, "Select an image first", f.view.lastStatus())
}

func TestMainController_CloseAll(t *testing.T) {
	f := newFixture(t, toGray)
	f.open(t, "/img/small.png", "/img/wide.png")

	f.controller.CloseAll()

	assert.Empty(t, f.view.names)
	assert.Equal(t, 1, f.view.cleared)
	assert.Zero(t, f.controller.images.List().Len())
	assert.Equal(t, "Closed 2 image(s)", f.view.lastStatus())

	f.controller.ViewportResized(display.NewSize(800, 600))
	assert.Equal(t, 1, f.view.cleared)
}
