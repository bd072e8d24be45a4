package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar holds the file and processing actions
type Toolbar struct {
	container     *fyne.Container
	openButton    *widget.Button
	saveButton    *widget.Button
	closeButton   *widget.Button
	processButton *widget.Button

	openHandler    func()
	saveHandler    func()
	closeHandler   func()
	processHandler func()
}

// NewToolbar creates a new toolbar component
func NewToolbar() *Toolbar {
	t := &Toolbar{}

	t.openButton = widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), func() {
		if t.openHandler != nil {
			t.openHandler()
		}
	})
	t.openButton.Importance = widget.HighImportance

	t.saveButton = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		if t.saveHandler != nil {
			t.saveHandler()
		}
	})
	t.saveButton.Disable()

	t.closeButton = widget.NewButtonWithIcon("Close", theme.WindowCloseIcon(), func() {
		if t.closeHandler != nil {
			t.closeHandler()
		}
	})
	t.closeButton.Disable()

	t.processButton = widget.NewButtonWithIcon("Grayscale", theme.ColorAchromaticIcon(), func() {
		if t.processHandler != nil {
			t.processHandler()
		}
	})
	t.processButton.Disable()

	t.container = container.NewHBox(
		t.openButton,
		t.saveButton,
		t.closeButton,
		widget.NewSeparator(),
		t.processButton,
	)
	return t
}

// SetOpenHandler sets the handler for the open action
func (t *Toolbar) SetOpenHandler(handler func()) { t.openHandler = handler }

// SetSaveHandler sets the handler for the save action
func (t *Toolbar) SetSaveHandler(handler func()) { t.saveHandler = handler }

// SetCloseHandler sets the handler for the close image action
func (t *Toolbar) SetCloseHandler(handler func()) { t.closeHandler = handler }

// SetProcessHandler sets the handler for the grayscale action
func (t *Toolbar) SetProcessHandler(handler func()) { t.processHandler = handler }

// SetState enables the actions that make sense for the current state
func (t *Toolbar) SetState(hasSelection, processing bool) {
	setEnabled(t.saveButton, hasSelection)
	setEnabled(t.closeButton, hasSelection)
	setEnabled(t.processButton, hasSelection && !processing)
}

// GetContainer returns the toolbar container
func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}
