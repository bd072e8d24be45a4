package components

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ImageListItem is what the list renders for one entry
type ImageListItem struct {
	Name string
	Icon image.Image
}

// ImageList shows opened and produced images with their thumbnails
type ImageList struct {
	list      *widget.List
	items     []ImageListItem
	thumbSize float32
	updating  bool

	selectHandler func(index int)
}

// NewImageList creates the list; thumbSize is the icon edge in pixels
func NewImageList(thumbSize int) *ImageList {
	il := &ImageList{thumbSize: float32(thumbSize)}

	il.list = widget.NewList(
		func() int { return len(il.items) },
		il.createItem,
		il.updateItem,
	)
	il.list.OnSelected = func(id widget.ListItemID) {
		if il.updating || il.selectHandler == nil {
			return
		}
		il.selectHandler(id)
	}

	return il
}

// SetSelectHandler sets the handler for user selection
func (il *ImageList) SetSelectHandler(handler func(index int)) {
	il.selectHandler = handler
}

// SetItems replaces the rows and moves the selection without firing the handler
func (il *ImageList) SetItems(items []ImageListItem, selected int) {
	il.updating = true
	defer func() { il.updating = false }()

	il.items = items
	il.list.Refresh()

	if selected >= 0 && selected < len(items) {
		il.list.Select(selected)
	} else {
		il.list.UnselectAll()
	}
}

// GetWidget returns the list widget
func (il *ImageList) GetWidget() fyne.CanvasObject {
	return il.list
}

func (il *ImageList) createItem() fyne.CanvasObject {
	icon := canvas.NewImageFromImage(nil)
	icon.FillMode = canvas.ImageFillContain
	icon.SetMinSize(fyne.NewSize(il.thumbSize, il.thumbSize))

	return container.NewHBox(icon, widget.NewLabel(""))
}

func (il *ImageList) updateItem(id widget.ListItemID, obj fyne.CanvasObject) {
	if id < 0 || id >= len(il.items) {
		return
	}
	item := il.items[id]
	row := obj.(*fyne.Container)

	icon := row.Objects[0].(*canvas.Image)
	icon.Image = item.Icon
	icon.Refresh()

	row.Objects[1].(*widget.Label).SetText(item.Name)
}
