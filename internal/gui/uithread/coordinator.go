// Package uithread provides the UI-affine job queue that worker goroutines
// use to hand results back to the goroutine that owns the widgets.
package uithread

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"

	"image-workbench/internal/logger"
)

// Poster accepts jobs that must run on the UI goroutine
type Poster interface {
	Post(job func())
}

// Executor runs a single job on the UI goroutine
type Executor func(job func())

// Inline runs the job on the goroutine draining the queue
func Inline(job func()) {
	job()
}

// Fyne forwards the job to the Fyne main thread
func Fyne(job func()) {
	fyne.Do(job)
}

// Coordinator is a FIFO of UI jobs. Post never blocks and never drops a job
// while the coordinator is running; Run or Drain execute jobs in post order.
type Coordinator struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool
	exec    Executor
	logger  logger.Logger
}

// NewCoordinator creates a coordinator; a nil executor runs jobs inline
func NewCoordinator(exec Executor, log logger.Logger) *Coordinator {
	if exec == nil {
		exec = Inline
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Coordinator{
		queue:  make([]func(), 0),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exec:   exec,
		logger: log,
	}
}

// Post appends a job to the queue
func (c *Coordinator) Post(job func()) {
	if job == nil {
		return
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		c.logger.Warning("UIThread", "job posted after stop, discarded", nil)
		return
	}
	c.queue = append(c.queue, job)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue until ctx is cancelled or Stop is called
func (c *Coordinator) Run(ctx context.Context) {
	for {
		c.Drain()

		select {
		case <-c.wake:
		case <-c.done:
			c.Drain()
			return
		case <-ctx.Done():
			return
		}
	}
}

// Drain executes every queued job and returns how many ran
func (c *Coordinator) Drain() int {
	ran := 0
	for {
		c.mu.Lock()
		jobs := c.queue
		c.queue = make([]func(), 0)
		c.mu.Unlock()

		if len(jobs) == 0 {
			return ran
		}

		for _, job := range jobs {
			c.exec(job)
			ran++
		}
	}
}

// Stop makes Run return after flushing and rejects further posts.
// Jobs already queued still run in the final drain.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	close(c.done)

	c.logger.Debug("UIThread", "coordinator stopping", map[string]interface{}{
		"pending": len(c.queue),
	})
}

// Shutdown implements shutdown.Shutdownable
func (c *Coordinator) Shutdown() {
	c.Stop()
}
