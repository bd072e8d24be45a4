package services

import (
	"context"
	"image"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"image-workbench/internal/display"
	"image-workbench/internal/logger"
	"image-workbench/internal/models"
)

// Codec decodes and encodes image files
type Codec interface {
	Decode(path string) (*models.Buffer, error)
	Encode(path string, buf *models.Buffer) error
}

// ImageInfo summarises an entry for the status bar and the info command
type ImageInfo struct {
	Name     string  `json:"name"`
	Path     string  `json:"path,omitempty"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Channels int     `json:"channels"`
	Zoom     float64 `json:"zoom"`
}

// ImageService handles image loading, saving and list bookkeeping
type ImageService struct {
	codec     Codec
	list      *models.ImageList
	session   *models.Session
	thumbSize int
	logger    logger.Logger
}

// NewImageService creates a new image service
func NewImageService(codec Codec, list *models.ImageList, session *models.Session, thumbSize int, log logger.Logger) *ImageService {
	if log == nil {
		log = logger.NewNop()
	}
	if session == nil {
		session = models.NewSession("")
	}

	return &ImageService{
		codec:     codec,
		list:      list,
		session:   session,
		thumbSize: thumbSize,
		logger:    log,
	}
}

// List returns the image list the service appends to
func (is *ImageService) List() *models.ImageList {
	return is.list
}

// Session returns the session state
func (is *ImageService) Session() *models.Session {
	return is.session
}

// Load decodes path without touching the list
func (is *ImageService) Load(ctx context.Context, path string) (*models.Buffer, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	startTime := time.Now()
	buf, err := is.codec.Decode(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", filepath.Base(path))
	}

	is.logger.Info("ImageService", "image decoded", map[string]interface{}{
		"path":        path,
		"shape":       buf.Shape,
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return buf, nil
}

// Open decodes path, builds its thumbnail and appends it to the list.
// It returns the new entry and its list index.
func (is *ImageService) Open(ctx context.Context, path string) (*models.ImageEntry, int, error) {
	buf, err := is.Load(ctx, path)
	if err != nil {
		return nil, -1, err
	}

	entry := &models.ImageEntry{
		Path:   path,
		Buffer: buf,
		Icon:   is.thumbnail(buf),
	}
	index := is.list.Add(entry)
	is.session.Remember(path)

	return entry, index, nil
}

// AddResult appends the output of operation applied to source
func (is *ImageService) AddResult(source *models.ImageEntry, operation string, buf *models.Buffer) (*models.ImageEntry, int) {
	name := operation
	sourceID := ""
	if source != nil {
		name = source.Name + " (" + operation + ")"
		sourceID = source.ID
	}

	entry := &models.ImageEntry{
		Name:     name,
		Buffer:   buf,
		Icon:     is.thumbnail(buf),
		SourceID: sourceID,
	}
	index := is.list.Add(entry)

	is.logger.Debug("ImageService", "result added to list", map[string]interface{}{
		"name":   name,
		"index":  index,
		"source": sourceID,
	})

	return entry, index
}

// Save encodes buf to path; the format follows the extension
func (is *ImageService) Save(ctx context.Context, path string, buf *models.Buffer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if buf == nil {
		return errors.New("no image data to save")
	}
	if err := is.codec.Encode(path, buf); err != nil {
		return errors.Wrapf(err, "failed to save %s", filepath.Base(path))
	}

	is.logger.Info("ImageService", "image saved", map[string]interface{}{
		"path":  path,
		"shape": buf.Shape,
	})
	return nil
}

// Info describes entry as it would be displayed in viewport
func (is *ImageService) Info(entry *models.ImageEntry, viewport display.Size) (ImageInfo, error) {
	if entry == nil || entry.Buffer == nil {
		return ImageInfo{}, models.ErrNoSelection
	}

	if err := entry.Buffer.Validate(); err != nil {
		return ImageInfo{}, err
	}
	zoom := display.ZoomFor(display.NewSize(entry.Buffer.Width(), entry.Buffer.Height()), viewport)

	return ImageInfo{
		Name:     entry.Name,
		Path:     entry.Path,
		Width:    entry.Buffer.Width(),
		Height:   entry.Buffer.Height(),
		Channels: entry.Buffer.Channels(),
		Zoom:     zoom,
	}, nil
}

func (is *ImageService) thumbnail(buf *models.Buffer) image.Image {
	if is.thumbSize <= 0 {
		return nil
	}
	bitmap, err := display.ToDisplayable(buf)
	if err != nil {
		return nil
	}
	return display.Thumbnail(bitmap, is.thumbSize)
}
