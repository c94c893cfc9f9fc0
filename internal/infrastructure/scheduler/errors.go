package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a task on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrSchedulerRunning is returned when registering a task after Start
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrTaskNotFound is returned when no task is registered under a name
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateTask is returned when a task name is registered twice
	ErrDuplicateTask = errors.New("task already registered")

	// ErrInvalidTask is returned for a task without a name, run func or interval
	ErrInvalidTask = errors.New("invalid task")

	// ErrJobInProgress is returned when a task already has a queued or running job
	ErrJobInProgress = errors.New("job already in progress for this task")
)
