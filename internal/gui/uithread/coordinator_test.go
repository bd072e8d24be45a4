package uithread

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (c *Coordinator) queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func TestCoordinator_DrainRunsInPostOrder(t *testing.T) {
	c := NewCoordinator(nil, nil)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		c.Post(func() { order = append(order, i) })
	}

	assert.Equal(t, 5, c.queued())
	assert.Equal(t, 5, c.Drain())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Zero(t, c.queued())
}

func TestCoordinator_JobsPostedDuringDrainAlsoRun(t *testing.T) {
	c := NewCoordinator(nil, nil)

	var ran []string
	c.Post(func() {
		ran = append(ran, "outer")
		c.Post(func() { ran = append(ran, "inner") })
	})

	assert.Equal(t, 2, c.Drain())
	assert.Equal(t, []string{"outer", "inner"}, ran)
}

func TestCoordinator_RunExecutesOnRunGoroutine(t *testing.T) {
	c := NewCoordinator(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		c.Run(ctx)
	}()

	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Post(func() {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 50
	}, time.Second, 5*time.Millisecond)

	c.Stop()
	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestCoordinator_PostAfterStopIsDiscarded(t *testing.T) {
	c := NewCoordinator(nil, nil)
	c.Stop()
	c.Stop()

	c.Post(func() { t.Fatal("job ran after stop") })
	assert.Zero(t, c.queued())
	assert.Zero(t, c.Drain())
}

func TestCoordinator_UsesExecutor(t *testing.T) {
	executed := 0
	c := NewCoordinator(func(job func()) {
		executed++
		job()
	}, nil)

	c.Post(func() {})
	c.Post(func() {})
	c.Drain()

	assert.Equal(t, 2, executed)
}
