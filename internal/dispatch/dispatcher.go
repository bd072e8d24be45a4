// Package dispatch runs one image transform at a time on a worker goroutine
// and delivers its outcome back through a UI-affine queue.
package dispatch

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/pkg/errors"

	"image-workbench/internal/gui/uithread"
	"image-workbench/internal/logger"
	"image-workbench/internal/models"
)

// Transform maps an image buffer to a new image buffer
type Transform func(input *models.Buffer) (*models.Buffer, error)

// Handlers are invoked on the UI goroutine. For every accepted task either
// OnResult or OnFailure runs, then OnComplete runs exactly once.
type Handlers struct {
	OnResult   func(result *models.Buffer)
	OnFailure  func(info ErrorInfo)
	OnComplete func()
}

// Dispatcher owns the Idle -> Running -> Delivering -> Idle state machine
type Dispatcher struct {
	poster  uithread.Poster
	state   *models.TaskStateRepository
	logger  logger.Logger
	workers sync.WaitGroup
}

// NewDispatcher creates a dispatcher posting outcomes to poster
func NewDispatcher(poster uithread.Poster, state *models.TaskStateRepository, log logger.Logger) *Dispatcher {
	if state == nil {
		state = models.NewTaskStateRepository()
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Dispatcher{
		poster: poster,
		state:  state,
		logger: log,
	}
}

// Submit starts transform(input) on a worker goroutine and returns immediately.
// It fails fast with models.ErrTaskActive while another task is in flight and
// with a StructuralError when input is malformed; nothing is delivered then.
func (d *Dispatcher) Submit(operation string, transform Transform, input *models.Buffer, handlers Handlers) error {
	if transform == nil {
		return errors.New("dispatch: nil transform")
	}
	if err := input.Validate(); err != nil {
		return err
	}

	if err := d.state.Start(operation); err != nil {
		d.logger.Warning("Dispatcher", "submit rejected, task in flight", map[string]interface{}{
			"operation": operation,
			"state":     d.state.GetState().Phase.String(),
		})
		return errors.WithStack(err)
	}

	d.logger.Debug("Dispatcher", "task submitted", map[string]interface{}{
		"operation": operation,
		"shape":     input.Shape,
	})

	d.workers.Add(1)
	go d.run(operation, transform, input, handlers)

	return nil
}

// State returns the current task state
func (d *Dispatcher) State() models.TaskState {
	return d.state.GetState()
}

// Counts returns how many tasks have succeeded and failed so far
func (d *Dispatcher) Counts() (completed, failed int) {
	return d.state.Counts()
}

// Busy reports whether a task is running or being delivered
func (d *Dispatcher) Busy() bool {
	return d.state.IsActive()
}

// Wait blocks until every worker goroutine has posted its outcome
func (d *Dispatcher) Wait() {
	d.workers.Wait()
}

// Shutdown implements shutdown.Shutdownable; running tasks cannot be cancelled
func (d *Dispatcher) Shutdown() {
	d.Wait()
}

func (d *Dispatcher) run(operation string, transform Transform, input *models.Buffer, handlers Handlers) {
	defer d.workers.Done()

	start := time.Now()
	outcome := d.execute(operation, transform, input)
	elapsed := time.Since(start)

	d.state.Deliver(outcome.Succeeded())

	if outcome.Succeeded() {
		d.logger.Info("Dispatcher", "task succeeded", map[string]interface{}{
			"operation":   operation,
			"duration_ms": elapsed.Milliseconds(),
			"shape":       outcome.Result.Shape,
		})
	} else {
		d.logger.Error("Dispatcher", outcome.Failure.Err, map[string]interface{}{
			"operation":   operation,
			"duration_ms": elapsed.Milliseconds(),
			"type":        outcome.Failure.Type,
			"trace":       outcome.Failure.Trace,
		})
	}

	d.poster.Post(func() {
		defer d.state.Complete()

		if outcome.Succeeded() {
			if handlers.OnResult != nil {
				handlers.OnResult(outcome.Result)
			}
		} else if handlers.OnFailure != nil {
			handlers.OnFailure(*outcome.Failure)
		}

		if handlers.OnComplete != nil {
			handlers.OnComplete()
		}
	})
}

// execute never lets a panic escape the worker goroutine
func (d *Dispatcher) execute(operation string, transform Transform, input *models.Buffer) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			info := NewErrorInfo(operation, &PanicError{Value: r, Stack: debug.Stack()})
			outcome = Outcome{Failure: &info}
		}
	}()

	result, err := transform(input)
	if err == nil && result == nil {
		err = errors.New("transform returned no image")
	}
	if err == nil {
		err = result.Validate()
	}
	if err != nil {
		info := NewErrorInfo(operation, err)
		return Outcome{Failure: &info}
	}

	return Outcome{Result: result}
}
