package views

import (
	"context"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"image-workbench/internal/display"
	"image-workbench/internal/models"
	"image-workbench/internal/views/components"
)

// Actions are the user intents the view forwards; the controller implements them
type Actions interface {
	OpenImages(ctx context.Context, paths []string)
	SelectImage(index int)
	ConvertToGrayscale()
	SaveSelected(ctx context.Context, path string)
	CloseSelected()
	CloseAll()
	ViewportResized(size display.Size)
}

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// MainView is the window content: toolbar, image list, image and status bar
type MainView struct {
	window       fyne.Window
	ctx          context.Context
	actions      Actions
	lastDir      func() string
	toolbar      *components.Toolbar
	imageList    *components.ImageList
	imageDisplay *components.ImageDisplay
	statusBar    *components.StatusBar

	hasSelection bool
	processing   bool
}

// NewMainView builds the layout inside window. lastDir supplies the start
// directory of the file dialogs.
func NewMainView(ctx context.Context, window fyne.Window, actions Actions, thumbSize int, lastDir func() string) *MainView {
	mv := &MainView{
		window:  window,
		ctx:     ctx,
		actions: actions,
		lastDir: lastDir,
	}

	mv.toolbar = components.NewToolbar()
	mv.imageList = components.NewImageList(thumbSize)
	mv.statusBar = components.NewStatusBar()
	mv.imageDisplay = components.NewImageDisplay(func(width, height int) {
		mv.actions.ViewportResized(display.NewSize(width, height))
	})

	mv.toolbar.SetOpenHandler(mv.showOpenDialog)
	mv.toolbar.SetSaveHandler(mv.showSaveDialog)
	mv.toolbar.SetCloseHandler(actions.CloseSelected)
	mv.toolbar.SetProcessHandler(actions.ConvertToGrayscale)
	mv.imageList.SetSelectHandler(actions.SelectImage)

	split := container.NewHSplit(mv.imageList.GetWidget(), mv.imageDisplay.GetContainer())
	split.Offset = 0.3

	window.SetContent(container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		nil,
		split,
	))
	window.SetMainMenu(mv.buildMenu())

	return mv
}

func (mv *MainView) buildMenu() *fyne.MainMenu {
	return fyne.NewMainMenu(
		fyne.NewMenu("File",
			fyne.NewMenuItem("Open...", mv.showOpenDialog),
			fyne.NewMenuItem("Save As...", mv.showSaveDialog),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Close Image", mv.actions.CloseSelected),
			fyne.NewMenuItem("Close All", mv.actions.CloseAll),
		),
		fyne.NewMenu("Image",
			fyne.NewMenuItem("Convert to Grayscale", mv.actions.ConvertToGrayscale),
		),
	)
}

// ShowImage implements display.Surface
func (mv *MainView) ShowImage(img image.Image, zoomPercent float64) {
	mv.imageDisplay.ShowImage(img, zoomPercent)
}

// ClearImage implements display.Surface
func (mv *MainView) ClearImage() {
	mv.imageDisplay.ClearImage()
	mv.statusBar.ResetZoom()
}

// SetImages refreshes the image list
func (mv *MainView) SetImages(entries []*models.ImageEntry, selected int) {
	items := make([]components.ImageListItem, len(entries))
	for i, entry := range entries {
		items[i] = components.ImageListItem{Name: entry.Name, Icon: entry.Icon}
	}
	mv.imageList.SetItems(items, selected)

	mv.hasSelection = selected >= 0
	mv.toolbar.SetState(mv.hasSelection, mv.processing)
}

// SetStatus updates the status bar message
func (mv *MainView) SetStatus(text string) {
	mv.statusBar.SetStatus(text)
}

// SetZoom updates the zoom display
func (mv *MainView) SetZoom(zoomPercent float64) {
	mv.statusBar.SetZoom(zoomPercent)
}

// SetProcessing disables the grayscale action while a task is in flight
func (mv *MainView) SetProcessing(active bool) {
	mv.processing = active
	mv.toolbar.SetState(mv.hasSelection, active)
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(title string, err error) {
	dialog.ShowError(err, mv.window)
}

func (mv *MainView) showOpenDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mv.ShowError("File selection error", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		mv.actions.OpenImages(mv.ctx, []string{path})
	}, mv.window)

	d.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	mv.setLocation(d)
	d.Show()
}

func (mv *MainView) showSaveDialog() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mv.ShowError("File save error", err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		mv.actions.SaveSelected(mv.ctx, path)
	}, mv.window)

	d.SetFileName("image.png")
	mv.setLocation(d)
	d.Show()
}

func (mv *MainView) setLocation(d *dialog.FileDialog) {
	if mv.lastDir == nil || mv.lastDir() == "" {
		return
	}
	if dir, err := storage.ListerForURI(storage.NewFileURI(mv.lastDir())); err == nil {
		d.SetLocation(dir)
	}
}
