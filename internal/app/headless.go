package app

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"image-workbench/internal/dispatch"
	"image-workbench/internal/display"
	"image-workbench/internal/gui/uithread"
	"image-workbench/internal/logger"
	"image-workbench/internal/models"
	"image-workbench/internal/services"
)

// ConvertReport describes one headless conversion
type ConvertReport struct {
	Input    services.ImageInfo `json:"input"`
	Output   services.ImageInfo `json:"output"`
	Duration time.Duration      `json:"duration"`
}

// Headless runs the same services as the GUI with an inline UI queue that the
// caller drains.
type Headless struct {
	images     *services.ImageService
	processing *services.ProcessingService
	queue      *uithread.Coordinator
	viewport   display.Size
	logger     logger.Logger
}

// NewHeadless creates a headless workbench around codec and transform
func NewHeadless(codec services.Codec, operation string, transform dispatch.Transform, viewport display.Size, log logger.Logger) *Headless {
	if log == nil {
		log = logger.NewNop()
	}

	queue := uithread.NewCoordinator(uithread.Inline, log)
	dispatcher := dispatch.NewDispatcher(queue, nil, log)

	return &Headless{
		images:     services.NewImageService(codec, models.NewImageList(), nil, 0, log),
		processing: services.NewProcessingService(dispatcher, operation, transform, log),
		queue:      queue,
		viewport:   viewport,
		logger:     log,
	}
}

// Info opens path and describes it as fitted to the viewport
func (h *Headless) Info(ctx context.Context, path string) (services.ImageInfo, error) {
	entry, _, err := h.images.Open(ctx, path)
	if err != nil {
		return services.ImageInfo{}, err
	}
	return h.images.Info(entry, h.viewport)
}

// Convert runs the operation on input and writes the result to output
func (h *Headless) Convert(ctx context.Context, input, output string) (ConvertReport, error) {
	source, _, err := h.images.Open(ctx, input)
	if err != nil {
		return ConvertReport{}, err
	}

	var (
		result  *models.Buffer
		failure *dispatch.ErrorInfo
	)
	startTime := time.Now()
	err = h.processing.Process(source, dispatch.Handlers{
		OnResult: func(b *models.Buffer) { result = b },
		OnFailure: func(info dispatch.ErrorInfo) {
			failure = &info
		},
	})
	if err != nil {
		return ConvertReport{}, err
	}

	h.processing.Wait()
	h.queue.Drain()
	elapsed := time.Since(startTime)

	if failure != nil {
		h.logger.Debug("Headless", "conversion trace", map[string]interface{}{"trace": failure.Trace})
		return ConvertReport{}, *failure
	}
	if result == nil {
		return ConvertReport{}, errors.New("conversion produced no result")
	}

	produced, _ := h.images.AddResult(source, h.processing.Operation(), result)
	if err := h.images.Save(ctx, output, result); err != nil {
		return ConvertReport{}, err
	}

	inInfo, err := h.images.Info(source, h.viewport)
	if err != nil {
		return ConvertReport{}, err
	}
	outInfo, err := h.images.Info(produced, h.viewport)
	if err != nil {
		return ConvertReport{}, err
	}
	outInfo.Path = output

	h.logger.Info("Headless", "conversion finished", map[string]interface{}{
		"input":       input,
		"output":      output,
		"zoom":        outInfo.Zoom,
		"duration_ms": elapsed.Milliseconds(),
	})

	return ConvertReport{Input: inInfo, Output: outInfo, Duration: elapsed}, nil
}
