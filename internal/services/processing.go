package services

import (
	"time"

	"image-workbench/internal/dispatch"
	"image-workbench/internal/logger"
	"image-workbench/internal/models"
)

// ProcessingService runs the single image operation through the dispatcher
type ProcessingService struct {
	dispatcher *dispatch.Dispatcher
	operation  string
	transform  dispatch.Transform
	logger     logger.Logger
}

// NewProcessingService creates a service submitting transform under operation
func NewProcessingService(dispatcher *dispatch.Dispatcher, operation string, transform dispatch.Transform, log logger.Logger) *ProcessingService {
	if log == nil {
		log = logger.NewNop()
	}

	return &ProcessingService{
		dispatcher: dispatcher,
		operation:  operation,
		transform:  transform,
		logger:     log,
	}
}

// Operation returns the name of the operation this service runs
func (ps *ProcessingService) Operation() string {
	return ps.operation
}

// Counts returns how many conversions have succeeded and failed so far
func (ps *ProcessingService) Counts() (completed, failed int) {
	return ps.dispatcher.Counts()
}

// IsProcessing reports whether a task is in flight
func (ps *ProcessingService) IsProcessing() bool {
	return ps.dispatcher.Busy()
}

// Process submits the operation for entry. Handlers run on the UI goroutine.
func (ps *ProcessingService) Process(entry *models.ImageEntry, handlers dispatch.Handlers) error {
	if entry == nil || entry.Buffer == nil {
		return models.ErrNoSelection
	}

	name := entry.Name
	return ps.dispatcher.Submit(ps.operation, ps.timed(name), entry.Buffer, handlers)
}

// timed logs the transform duration from the worker goroutine
func (ps *ProcessingService) timed(name string) dispatch.Transform {
	return func(input *models.Buffer) (*models.Buffer, error) {
		startTime := time.Now()
		result, err := ps.transform(input)

		fields := map[string]interface{}{
			"operation":   ps.operation,
			"image":       name,
			"duration_ms": time.Since(startTime).Milliseconds(),
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		ps.logger.Debug("ProcessingService", "transform finished", fields)

		return result, err
	}
}

// Wait blocks until the in-flight task has posted its outcome
func (ps *ProcessingService) Wait() {
	ps.dispatcher.Wait()
}
