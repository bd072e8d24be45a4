package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-workbench/internal/gui/uithread"
	"image-workbench/internal/models"
	"image-workbench/internal/shutdown"
)

// recorder collects handler calls in order; it only runs on the coordinator's goroutine
type recorder struct {
	mu       sync.Mutex
	events   []string
	result   *models.Buffer
	failure  ErrorInfo
	complete chan struct{}
}

func newRecorder() *recorder {
	return &recorder{complete: make(chan struct{}, 4)}
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnResult: func(b *models.Buffer) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, "result")
			r.result = b
		},
		OnFailure: func(info ErrorInfo) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, "failure")
			r.failure = info
		},
		OnComplete: func() {
			r.mu.Lock()
			r.events = append(r.events, "complete")
			r.mu.Unlock()
			r.complete <- struct{}{}
		},
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func startLoop(t *testing.T) *uithread.Coordinator {
	t.Helper()
	c := uithread.NewCoordinator(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)
	t.Cleanup(func() {
		c.Stop()
		cancel()
	})
	return c
}

func waitComplete(t *testing.T, r *recorder) {
	t.Helper()
	select {
	case <-r.complete:
	case <-time.After(2 * time.Second):
		t.Fatal("completion notification not delivered")
	}
}

func TestSubmit_SuccessDeliversResultThenComplete(t *testing.T) {
	loop := startLoop(t)
	d := NewDispatcher(loop, nil, nil)
	rec := newRecorder()

	input := models.NewRGBBuffer(2, 2)
	output := models.NewGrayBuffer(2, 2)
	require.NoError(t, d.Submit("grayscale", func(b *models.Buffer) (*models.Buffer, error) {
		assert.Same(t, input, b)
		return output, nil
	}, input, rec.handlers()))

	waitComplete(t, rec)
	assert.Equal(t, []string{"result", "complete"}, rec.snapshot())
	assert.Same(t, output, rec.result)
	assert.Eventually(t, func() bool { return !d.Busy() }, time.Second, time.Millisecond)
}

func TestSubmit_ErrorDeliversFailureThenComplete(t *testing.T) {
	loop := startLoop(t)
	d := NewDispatcher(loop, nil, nil)
	rec := newRecorder()

	cause := errors.New("bad pixels")
	require.NoError(t, d.Submit("grayscale", func(*models.Buffer) (*models.Buffer, error) {
		return nil, cause
	}, models.NewRGBBuffer(1, 1), rec.handlers()))

	waitComplete(t, rec)
	assert.Equal(t, []string{"failure", "complete"}, rec.snapshot())
	assert.Equal(t, "grayscale failed: bad pixels", rec.failure.Message)
	assert.Equal(t, "*errors.errorString", rec.failure.Type)
	assert.Contains(t, rec.failure.Trace, "bad pixels")
	assert.ErrorIs(t, rec.failure, cause)

	var te *TransformError
	assert.ErrorAs(t, rec.failure, &te)
}

func TestSubmit_PanicBecomesFailure(t *testing.T) {
	loop := startLoop(t)
	d := NewDispatcher(loop, nil, nil)
	rec := newRecorder()

	require.NoError(t, d.Submit("grayscale", func(*models.Buffer) (*models.Buffer, error) {
		panic("index out of range")
	}, models.NewGrayBuffer(1, 1), rec.handlers()))

	waitComplete(t, rec)
	assert.Equal(t, []string{"failure", "complete"}, rec.snapshot())
	assert.Contains(t, rec.failure.Message, "index out of range")
	assert.Contains(t, rec.failure.Trace, "goroutine")
}

func TestSubmit_MalformedResultIsFailure(t *testing.T) {
	loop := startLoop(t)
	d := NewDispatcher(loop, nil, nil)
	rec := newRecorder()

	require.NoError(t, d.Submit("grayscale", func(*models.Buffer) (*models.Buffer, error) {
		return &models.Buffer{Shape: []int{1, 1, 1, 1}, Pix: []uint8{0}}, nil
	}, models.NewGrayBuffer(1, 1), rec.handlers()))

	waitComplete(t, rec)
	assert.Equal(t, []string{"failure", "complete"}, rec.snapshot())
	assert.True(t, models.IsStructuralError(rec.failure))
}

func TestSubmit_NilResultIsFailure(t *testing.T) {
	loop := startLoop(t)
	d := NewDispatcher(loop, nil, nil)
	rec := newRecorder()

	require.NoError(t, d.Submit("grayscale", func(*models.Buffer) (*models.Buffer, error) {
		return nil, nil
	}, models.NewGrayBuffer(1, 1), rec.handlers()))

	waitComplete(t, rec)
	assert.Equal(t, []string{"failure", "complete"}, rec.snapshot())
}

func TestSubmit_WhileRunningIsRejected(t *testing.T) {
	loop := startLoop(t)
	d := NewDispatcher(loop, nil, nil)
	rec := newRecorder()

	release := make(chan struct{})
	require.NoError(t, d.Submit("grayscale", func(b *models.Buffer) (*models.Buffer, error) {
		<-release
		return b, nil
	}, models.NewGrayBuffer(1, 1), rec.handlers()))

	assert.Equal(t, models.TaskRunning, d.State().Phase)

	calls := 0
	err := d.Submit("grayscale", func(b *models.Buffer) (*models.Buffer, error) {
		calls++
		return b, nil
	}, models.NewGrayBuffer(1, 1), Handlers{})
	assert.ErrorIs(t, err, models.ErrTaskActive)

	close(release)
	waitComplete(t, rec)
	d.Wait()

	assert.Zero(t, calls)
	assert.Equal(t, []string{"result", "complete"}, rec.snapshot())
}

func TestSubmit_InvalidInputFailsFast(t *testing.T) {
	d := NewDispatcher(uithread.NewCoordinator(nil, nil), nil, nil)

	err := d.Submit("grayscale", func(b *models.Buffer) (*models.Buffer, error) {
		t.Fatal("transform must not run")
		return nil, nil
	}, &models.Buffer{Shape: []int{4}, Pix: make([]uint8, 4)}, Handlers{})

	assert.True(t, models.IsStructuralError(err))
	assert.False(t, d.Busy())
}

func TestSubmit_NilTransform(t *testing.T) {
	d := NewDispatcher(uithread.NewCoordinator(nil, nil), nil, nil)
	assert.Error(t, d.Submit("grayscale", nil, models.NewGrayBuffer(1, 1), Handlers{}))
	assert.False(t, d.Busy())
}

func TestSubmit_HandlersRunOnlyWhenQueueDrains(t *testing.T) {
	queue := uithread.NewCoordinator(nil, nil)
	d := NewDispatcher(queue, nil, nil)
	rec := newRecorder()

	require.NoError(t, d.Submit("grayscale", func(b *models.Buffer) (*models.Buffer, error) {
		return b, nil
	}, models.NewGrayBuffer(1, 1), rec.handlers()))
	d.Wait()

	assert.Empty(t, rec.snapshot())
	assert.Equal(t, models.TaskDeliveringSuccess, d.State().Phase)

	assert.Equal(t, 1, queue.Drain())
	assert.Equal(t, []string{"result", "complete"}, rec.snapshot())
	assert.Equal(t, models.TaskIdle, d.State().Phase)
}

func TestSubmit_SequentialTasksAfterCompletion(t *testing.T) {
	queue := uithread.NewCoordinator(nil, nil)
	d := NewDispatcher(queue, nil, nil)

	for i := 0; i < 3; i++ {
		rec := newRecorder()
		require.NoError(t, d.Submit("grayscale", func(b *models.Buffer) (*models.Buffer, error) {
			return b, nil
		}, models.NewGrayBuffer(1, 1), rec.handlers()))
		d.Wait()
		queue.Drain()
		assert.Equal(t, []string{"result", "complete"}, rec.snapshot())
	}
}

func TestShutdown_TaskFinishingDuringShutdownIsDelivered(t *testing.T) {
	loop := uithread.NewCoordinator(nil, nil)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		loop.Run(context.Background())
	}()

	state := models.NewTaskStateRepository()
	d := NewDispatcher(loop, state, nil)
	rec := newRecorder()

	manager := shutdown.NewManager(nil)
	manager.Register("ui-coordinator", loop)
	manager.Register("dispatcher", d)

	release := make(chan struct{})
	require.NoError(t, d.Submit("grayscale", func(b *models.Buffer) (*models.Buffer, error) {
		<-release
		return b, nil
	}, models.NewGrayBuffer(1, 1), rec.handlers()))

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		manager.Shutdown()
	}()

	require.Eventually(t, func() bool { return manager.Context().Err() != nil }, time.Second, time.Millisecond)
	close(release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not finish")
	}
	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	assert.Equal(t, []string{"result", "complete"}, rec.snapshot())
	assert.False(t, state.IsActive())
	completed, _ := state.Counts()
	assert.Equal(t, 1, completed)
}
