package controllers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"image-workbench/internal/dispatch"
	"image-workbench/internal/display"
	"image-workbench/internal/gui/uithread"
	"image-workbench/internal/logger"
	"image-workbench/internal/models"
	"image-workbench/internal/services"
)

// StatusReady is shown whenever nothing is happening
const StatusReady = "Ready"

// View is what the controller drives. All methods are called on the UI goroutine.
type View interface {
	display.Surface
	SetImages(entries []*models.ImageEntry, selected int)
	SetStatus(text string)
	SetZoom(zoomPercent float64)
	SetProcessing(active bool)
	ShowError(title string, err error)
}

// MainController wires view events to the image and processing services
type MainController struct {
	images     *services.ImageService
	processing *services.ProcessingService
	poster     uithread.Poster
	logger     logger.Logger

	view      View
	presenter *display.Presenter
	viewport  display.Size

	// UI goroutine only
	pending   *models.ImageEntry
	taskStart time.Time

	loads sync.WaitGroup
}

// NewMainController creates a new main controller
func NewMainController(
	images *services.ImageService,
	processing *services.ProcessingService,
	poster uithread.Poster,
	viewport display.Size,
	log logger.Logger,
) *MainController {
	if log == nil {
		log = logger.NewNop()
	}

	return &MainController{
		images:     images,
		processing: processing,
		poster:     poster,
		logger:     log,
		viewport:   viewport,
	}
}

// SetView associates the view with this controller
func (mc *MainController) SetView(view View) {
	mc.view = view
	mc.presenter = display.NewPresenter(view, mc.viewport, mc.logger)

	mc.refreshList()
	view.SetProcessing(mc.processing.IsProcessing())
	view.SetStatus(StatusReady)
}

// OpenImages decodes paths off the UI goroutine and appends them to the list.
// The last successfully opened image becomes the selection.
func (mc *MainController) OpenImages(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}

	mc.setStatus(fmt.Sprintf("Opening %d image(s)...", len(paths)))

	mc.loads.Add(1)
	go func() {
		defer mc.loads.Done()

		opened := 0
		for _, path := range paths {
			_, index, err := mc.images.Open(ctx, path)
			if err != nil {
				mc.logger.Error("MainController", err, map[string]interface{}{"path": path})
				mc.poster.Post(func() {
					mc.handleError("Image load failed", err)
				})
				continue
			}

			opened++
			mc.poster.Post(func() {
				mc.SelectImage(index)
			})
		}

		count := opened
		mc.poster.Post(func() {
			mc.setStatus(fmt.Sprintf("Opened %d of %d image(s)", count, len(paths)))
		})
	}()
}

// WaitForLoads blocks until every OpenImages call has posted its results
func (mc *MainController) WaitForLoads() {
	mc.loads.Wait()
}

// SelectImage displays the list entry at index
func (mc *MainController) SelectImage(index int) {
	list := mc.images.List()
	if err := list.Select(index); err != nil {
		mc.handleError("Selection failed", err)
		return
	}

	entry := list.Selected()
	mc.refreshList()
	mc.show(entry)
	mc.setStatus(entry.Info())
}

// ConvertToGrayscale submits the selected image to the processing service
func (mc *MainController) ConvertToGrayscale() {
	if mc.processing.IsProcessing() {
		mc.setStatus("A conversion is already running")
		return
	}

	entry := mc.images.List().Selected()
	if entry == nil {
		mc.setStatus("Select an image first")
		return
	}

	err := mc.processing.Process(entry, dispatch.Handlers{
		OnResult:   mc.OnTaskResult,
		OnFailure:  mc.OnTaskFailure,
		OnComplete: mc.OnTaskComplete,
	})
	if err != nil {
		mc.handleError("Conversion failed", err)
		return
	}

	mc.pending = entry
	mc.taskStart = time.Now()
	if mc.view != nil {
		mc.view.SetProcessing(true)
	}
	mc.setStatus(fmt.Sprintf("Converting %s to %s...", entry.Name, mc.processing.Operation()))
}

// OnTaskResult adds the converted image to the list and displays it
func (mc *MainController) OnTaskResult(result *models.Buffer) {
	entry, index := mc.images.AddResult(mc.pending, mc.processing.Operation(), result)
	if err := mc.images.List().Select(index); err != nil {
		mc.handleError("Selection failed", err)
		return
	}

	mc.refreshList()
	mc.show(entry)
	mc.setStatus(fmt.Sprintf("Done in %s%s", time.Since(mc.taskStart).Round(time.Millisecond), mc.taskCounts()))
}

// OnTaskFailure reports a failed transform to the user
func (mc *MainController) OnTaskFailure(info dispatch.ErrorInfo) {
	mc.logger.Warning("MainController", "conversion failed", map[string]interface{}{
		"operation": info.Operation,
		"type":      info.Type,
		"message":   info.Message,
	})

	mc.setStatus(info.Message + mc.taskCounts())
	if mc.view != nil {
		mc.view.ShowError(fmt.Sprintf("%s failed", info.Operation), info)
	}
}

// OnTaskComplete re-enables processing once the outcome has been handled
func (mc *MainController) OnTaskComplete() {
	mc.pending = nil
	if mc.view != nil {
		mc.view.SetProcessing(false)
	}
}

// ViewportResized refits the displayed image without re-running any transform
func (mc *MainController) ViewportResized(size display.Size) {
	mc.viewport = size
	if mc.presenter == nil {
		return
	}

	mc.presenter.OnViewportResized(size)
	if mc.view != nil && mc.presenter.Bitmap() != nil {
		mc.view.SetZoom(mc.presenter.Zoom())
	}
}

// CloseSelected removes the selected image from the list. The next entry is
// shown in its place, or the display is cleared when the list is empty.
func (mc *MainController) CloseSelected() {
	list := mc.images.List()
	index := list.SelectedIndex()
	entry := list.Get(index)
	if entry == nil {
		mc.setStatus("Select an image first")
		return
	}
	name := entry.Name

	if err := list.Remove(index); err != nil {
		mc.handleError("Close failed", err)
		return
	}

	mc.logger.Debug("MainController", "image closed", map[string]interface{}{
		"name":      name,
		"remaining": list.Len(),
	})

	mc.refreshList()
	if next := list.Selected(); next != nil {
		mc.show(next)
	} else {
		mc.clearDisplay()
	}
	mc.setStatus(fmt.Sprintf("Closed %s", name))
}

// CloseAll empties the list and clears the display
func (mc *MainController) CloseAll() {
	list := mc.images.List()
	count := list.Len()
	if count == 0 {
		return
	}

	list.Clear()
	mc.refreshList()
	mc.clearDisplay()
	mc.setStatus(fmt.Sprintf("Closed %d image(s)", count))
}

// SaveSelected writes the selected image to path
func (mc *MainController) SaveSelected(ctx context.Context, path string) {
	entry := mc.images.List().Selected()
	if entry == nil {
		mc.setStatus("Select an image first")
		return
	}

	if err := mc.images.Save(ctx, path, entry.Buffer); err != nil {
		mc.handleError("Image save failed", err)
		return
	}
	mc.images.Session().Remember(path)
	mc.setStatus(fmt.Sprintf("Saved %s", path))
}

// Shutdown implements shutdown.Shutdownable
func (mc *MainController) Shutdown() {
	mc.loads.Wait()
}

func (mc *MainController) show(entry *models.ImageEntry) {
	if mc.presenter == nil || entry == nil {
		return
	}

	if err := mc.presenter.Show(entry.Buffer); err != nil {
		mc.handleError("Display failed", err)
		return
	}
	mc.view.SetZoom(mc.presenter.Zoom())
}

func (mc *MainController) clearDisplay() {
	if mc.presenter != nil {
		mc.presenter.Clear()
	}
}

// taskCounts is the running tally appended to task status messages
func (mc *MainController) taskCounts() string {
	completed, failed := mc.processing.Counts()
	return fmt.Sprintf(" (%d converted, %d failed)", completed, failed)
}

func (mc *MainController) refreshList() {
	if mc.view == nil {
		return
	}
	list := mc.images.List()
	mc.view.SetImages(list.Entries(), list.SelectedIndex())
}

func (mc *MainController) setStatus(text string) {
	if mc.view != nil {
		mc.view.SetStatus(text)
	}
}

// handleError logs err and shows it to the user
func (mc *MainController) handleError(title string, err error) {
	mc.logger.Error("MainController", err, map[string]interface{}{"title": title})

	if mc.view != nil {
		mc.view.ShowError(title, err)
		mc.view.SetStatus(title)
	}
}
