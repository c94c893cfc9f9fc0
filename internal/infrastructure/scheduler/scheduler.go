// Package scheduler runs the background maintenance tasks of the marketplace
// (backlog reconciliation, feed refresh) on fixed intervals with a small
// worker pool and bounded retries.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Task is a named unit of periodic work
type Task struct {
	Name     string
	Interval time.Duration
	// RunOnStart submits a job as soon as the scheduler starts
	RunOnStart bool
	Run        func(ctx context.Context) error
}

func (t Task) validate() error {
	if t.Name == "" || t.Run == nil || t.Interval <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidTask, t.Name)
	}
	return nil
}

// Job is one execution of a Task
type Job struct {
	ID          uuid.UUID
	Task        string
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a new job instance
func NewJob(task string, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Task:       task,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry
func (j *Job) ScheduleRetry(delay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	QueueSize         int
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        time.Minute,
		RetryAttempts:     3,
		RetryDelay:        10 * time.Second,
		QueueSize:         16,
	}
}

// Scheduler triggers registered tasks on their interval and executes the
// resulting jobs on a worker pool. A task never has more than one job queued
// or running at a time; ticks that land while one is in flight are skipped.
type Scheduler struct {
	config SchedulerConfig
	logger *zap.Logger

	tasks    map[string]Task
	jobs     chan *Job
	inFlight map[string]bool
	lastRuns map[string]Job

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) *Scheduler {
	defaults := DefaultSchedulerConfig()
	if config.MaxConcurrentJobs <= 0 {
		config.MaxConcurrentJobs = defaults.MaxConcurrentJobs
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = defaults.JobTimeout
	}
	if config.RetryAttempts < 0 {
		config.RetryAttempts = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:   config,
		logger:   logger,
		tasks:    make(map[string]Task),
		jobs:     make(chan *Job, config.QueueSize),
		inFlight: make(map[string]bool),
		lastRuns: make(map[string]Job),
	}
}

// Register adds a task. Tasks must be registered before Start.
func (s *Scheduler) Register(task Task) error {
	if err := task.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, ok := s.tasks[task.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTask, task.Name)
	}
	s.tasks[task.Name] = task
	return nil
}

// Start starts the worker pool and one trigger loop per task.
// It is a no-op when the scheduler is disabled or already running.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Maintenance scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	tasks := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := range s.config.MaxConcurrentJobs {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	for _, t := range tasks {
		s.wg.Add(1)
		go s.triggerLoop(ctx, t)
	}

	s.logger.Info("Maintenance scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Int("tasks", len(tasks)),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels all loops and waits for running jobs to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Maintenance scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Maintenance scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether Start has been called without a matching Stop
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Trigger queues a job for the named task right away
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	if _, ok := s.tasks[name]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}
	if s.inFlight[name] {
		s.mu.Unlock()
		return ErrJobInProgress
	}
	job := NewJob(name, s.config.RetryAttempts)
	select {
	case s.jobs <- job:
		s.inFlight[name] = true
		s.mu.Unlock()
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("task", name),
		)
		return nil
	default:
		s.mu.Unlock()
		return ErrJobQueueFull
	}
}

// LastRun returns the most recent finished job of a task
func (s *Scheduler) LastRun(name string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.lastRuns[name]
	return j, ok
}

func (s *Scheduler) triggerLoop(ctx context.Context, t Task) {
	defer s.wg.Done()

	if t.RunOnStart {
		s.submit(t.Name)
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.submit(t.Name)
		}
	}
}

func (s *Scheduler) submit(name string) {
	err := s.Trigger(name)
	switch {
	case err == nil, errors.Is(err, ErrSchedulerNotRunning):
	case errors.Is(err, ErrJobInProgress):
		s.logger.Debug("Skipping tick, previous job still in flight", zap.String("task", name))
	default:
		s.logger.Warn("Failed to submit job", zap.String("task", name), zap.Error(err))
	}
}

// worker processes jobs from the queue
func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

// processJob executes a single job
func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	s.mu.Lock()
	task, ok := s.tasks[job.Task]
	s.mu.Unlock()
	if !ok {
		s.finish(job)
		return
	}

	job.Start()
	s.logger.Debug("Processing job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("task", job.Task),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := s.run(jobCtx, task)
	cancel()

	if err == nil {
		job.Complete()
		s.logger.Debug("Job completed",
			zap.String("job_id", job.ID.String()),
			zap.String("task", job.Task),
		)
		s.finish(job)
		return
	}

	job.Fail(err.Error())
	s.logger.Error("Job failed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("task", job.Task),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(err),
	)

	if !job.ShouldRetry() || ctx.Err() != nil {
		s.finish(job)
		return
	}

	job.ScheduleRetry(s.config.RetryDelay)
	s.wg.Add(1)
	go s.retryLater(ctx, job)
}

// run calls the task and turns a panic into an error
func (s *Scheduler) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
	}()
	return task.Run(ctx)
}

func (s *Scheduler) retryLater(ctx context.Context, job *Job) {
	defer s.wg.Done()

	timer := time.NewTimer(time.Until(*job.NextRetryAt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.finish(job)
	case <-timer.C:
		select {
		case s.jobs <- job:
			s.logger.Info("Job requeued for retry",
				zap.String("job_id", job.ID.String()),
				zap.String("task", job.Task),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
			)
		case <-ctx.Done():
			s.finish(job)
		}
	}
}

func (s *Scheduler) finish(job *Job) {
	s.mu.Lock()
	delete(s.inFlight, job.Task)
	s.lastRuns[job.Task] = *job
	s.mu.Unlock()
}
