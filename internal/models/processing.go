package models

import (
	"sync"
	"time"
)

// TaskPhase is the dispatcher state machine position
type TaskPhase int

const (
	TaskIdle TaskPhase = iota
	TaskRunning
	TaskDeliveringSuccess
	TaskDeliveringFailure
)

func (p TaskPhase) String() string {
	switch p {
	case TaskIdle:
		return "idle"
	case TaskRunning:
		return "running"
	case TaskDeliveringSuccess:
		return "delivering_success"
	case TaskDeliveringFailure:
		return "delivering_failure"
	default:
		return "unknown"
	}
}

// TaskState is a snapshot of the in-flight task, if any
type TaskState struct {
	Phase     TaskPhase
	Operation string
	StartTime time.Time
	Duration  time.Duration
}

// IsActive reports whether a task occupies the dispatcher
func (s TaskState) IsActive() bool {
	return s.Phase != TaskIdle
}

// TaskStateRepository guards the single-task state machine
type TaskStateRepository struct {
	mu        sync.RWMutex
	state     TaskState
	completed int
	failed    int
}

// NewTaskStateRepository creates a repository in the idle state
func NewTaskStateRepository() *TaskStateRepository {
	return &TaskStateRepository{
		state: TaskState{Phase: TaskIdle},
	}
}

// GetState returns the current task state
func (r *TaskStateRepository) GetState() TaskState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Start moves Idle -> Running. It returns ErrTaskActive from any other phase.
func (r *TaskStateRepository) Start(operation string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Phase != TaskIdle {
		return ErrTaskActive
	}

	r.state = TaskState{
		Phase:     TaskRunning,
		Operation: operation,
		StartTime: time.Now(),
	}
	return nil
}

// Deliver moves Running -> DeliveringSuccess or DeliveringFailure
func (r *TaskStateRepository) Deliver(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Phase != TaskRunning {
		return
	}

	r.state.Duration = time.Since(r.state.StartTime)
	if success {
		r.state.Phase = TaskDeliveringSuccess
		r.completed++
	} else {
		r.state.Phase = TaskDeliveringFailure
		r.failed++
	}
}

// Complete returns to Idle once the completion notification has fired
func (r *TaskStateRepository) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = TaskState{Phase: TaskIdle}
}

// IsActive returns true while a task is running or delivering
func (r *TaskStateRepository) IsActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsActive()
}

// Counts returns the number of successful and failed tasks so far
func (r *TaskStateRepository) Counts() (completed, failed int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.completed, r.failed
}
