package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// StatusBar displays the status message and the zoom of the displayed image
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	zoomLabel   *widget.Label
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	sb := &StatusBar{
		statusLabel: widget.NewLabel("Ready"),
		zoomLabel:   widget.NewLabel("Zoom: --"),
	}
	sb.statusLabel.Truncation = fyne.TextTruncateEllipsis

	sb.container = container.NewBorder(nil, nil, nil,
		container.NewHBox(widget.NewSeparator(), sb.zoomLabel),
		container.New(layout.NewStackLayout(), sb.statusLabel),
	)
	return sb
}

// SetStatus updates the status message
func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

// GetStatus returns the current status message
func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetZoom shows the zoom percentage
func (sb *StatusBar) SetZoom(zoomPercent float64) {
	sb.zoomLabel.SetText(fmt.Sprintf("Zoom: %.0f%%", zoomPercent))
}

// ResetZoom clears the zoom display
func (sb *StatusBar) ResetZoom() {
	sb.zoomLabel.SetText("Zoom: --")
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
