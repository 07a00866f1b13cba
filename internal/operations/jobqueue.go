package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// DefaultJobRetention is how many finished jobs stay queryable by ID
const DefaultJobRetention = 100

// JobFunc is the body of a job. It returns an optional result value.
type JobFunc func(ctx context.Context) (interface{}, error)

// JobObserver is notified on every job state change
type JobObserver interface {
	JobChanged(snapshot JobSnapshot)
}

// Job represents one asynchronous operation run off the caller's goroutine
type Job struct {
	ID   string
	Kind string

	mu          sync.Mutex
	status      JobStatus
	err         error
	result      interface{}
	createdAt   time.Time
	startedAt   *time.Time
	completedAt *time.Time
	done        chan struct{}
}

// JobSnapshot is an immutable copy of a job's state
type JobSnapshot struct {
	ID          string
	Kind        string
	Status      JobStatus
	Err         error
	Result      interface{}
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Done is closed when the job has finished
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or ctx ends and returns the job error
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		j.mu.Lock()
		defer j.mu.Unlock()
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the job state
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:          j.ID,
		Kind:        j.Kind,
		Status:      j.status,
		Err:         j.err,
		Result:      j.result,
		CreatedAt:   j.createdAt,
		StartedAt:   j.startedAt,
		CompletedAt: j.completedAt,
	}
}

// JobQueue runs jobs one at a time against a single dataset. A second submit
// while a job is running is rejected rather than queued, since no operation
// on the table is reentrant.
type JobQueue struct {
	mu       sync.RWMutex
	running  *Job
	jobs     map[string]*Job
	finished []string
	retain   int
	group    errgroup.Group
	logger   *slog.Logger
	observer JobObserver
	tracer   *OperationTracer
}

// NewJobQueue creates a new job queue
func NewJobQueue(logger *slog.Logger, observer JobObserver) *JobQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobQueue{
		jobs:     make(map[string]*Job),
		retain:   DefaultJobRetention,
		logger:   logger.With(slog.String("component", "jobqueue")),
		observer: observer,
		tracer:   NewOperationTracer(),
	}
}

// SetRetention bounds how many finished jobs GetJob can still return. Older
// ones are forgotten first; the running job is never dropped.
func (q *JobQueue) SetRetention(n int) {
	if n < 1 {
		n = 1
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.retain = n
	q.prune()
}

// Submit starts fn on its own goroutine and returns immediately. The job keeps
// running when ctx is cancelled; operations run to completion or failure.
func (q *JobQueue) Submit(ctx context.Context, kind string, fn JobFunc) (*Job, error) {
	q.mu.Lock()
	if q.running != nil {
		q.mu.Unlock()
		return nil, NewBusyError(kind)
	}
	job := &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		status:    JobStatusPending,
		createdAt: time.Now(),
		done:      make(chan struct{}),
	}
	q.jobs[job.ID] = job
	q.running = job
	q.mu.Unlock()

	q.logger.InfoContext(ctx, "job enqueued",
		slog.String("job_id", job.ID),
		slog.String("kind", kind))
	q.notify(job)

	runCtx := context.WithoutCancel(ctx)
	q.group.Go(func() error {
		q.process(runCtx, job, fn)
		return nil
	})
	return job, nil
}

// Run submits fn and waits for it to finish
func (q *JobQueue) Run(ctx context.Context, kind string, fn JobFunc) (interface{}, error) {
	job, err := q.Submit(ctx, kind, fn)
	if err != nil {
		return nil, err
	}
	if err := job.Wait(ctx); err != nil {
		return nil, err
	}
	return job.Snapshot().Result, nil
}

// GetJob retrieves a job by ID
func (q *JobQueue) GetJob(id string) (*Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.jobs[id]
	if !ok {
		return nil, NewNotFoundError("jobs", fmt.Sprintf("job %s", id))
	}
	return job, nil
}

// Busy reports whether a job is running
func (q *JobQueue) Busy() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.running != nil
}

// Wait blocks until every submitted job has finished
func (q *JobQueue) Wait() error {
	return q.group.Wait()
}

// Stop waits for in-flight jobs up to timeout
func (q *JobQueue) Stop(timeout time.Duration) error {
	q.logger.Info("stopping job queue")

	done := make(chan struct{})
	go func() {
		_ = q.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("job queue stopped gracefully")
		return nil
	case <-time.After(timeout):
		q.logger.Warn("job queue stop timeout exceeded")
		return fmt.Errorf("timeout waiting for jobs to finish")
	}
}

func (q *JobQueue) process(ctx context.Context, job *Job, fn JobFunc) {
	logger := q.logger.With(
		slog.String("job_id", job.ID),
		slog.String("kind", job.Kind))

	ctx, span := q.tracer.Start(ctx, job)

	now := time.Now()
	job.mu.Lock()
	job.status = JobStatusRunning
	job.startedAt = &now
	job.mu.Unlock()
	q.notify(job)
	logger.InfoContext(ctx, "processing job started")

	var (
		result interface{}
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "job processing panicked", slog.Any("panic", r))
				err = fmt.Errorf("job processing panicked: %v", r)
			}
		}()
		result, err = fn(ctx)
	}()

	completed := time.Now()
	job.mu.Lock()
	job.result = result
	job.err = err
	job.completedAt = &completed
	switch {
	case err == nil:
		job.status = JobStatusCompleted
	case IsCancelled(err):
		job.status = JobStatusCancelled
	default:
		job.status = JobStatusFailed
	}
	status := job.status
	job.mu.Unlock()

	q.tracer.End(ctx, span, job.Kind, status, err)

	q.mu.Lock()
	q.running = nil
	q.finished = append(q.finished, job.ID)
	q.prune()
	q.mu.Unlock()
	close(job.done)

	if err != nil && status == JobStatusFailed {
		logger.ErrorContext(ctx, "job failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", completed.Sub(now)))
	} else {
		logger.InfoContext(ctx, "job finished",
			slog.String("status", string(status)),
			slog.Duration("duration", completed.Sub(now)))
	}
	q.notify(job)
}

// prune drops the oldest finished jobs beyond the retention limit. Callers
// hold q.mu.
func (q *JobQueue) prune() {
	excess := len(q.finished) - q.retain
	if excess <= 0 {
		return
	}
	for _, id := range q.finished[:excess] {
		delete(q.jobs, id)
	}
	q.finished = append(q.finished[:0:0], q.finished[excess:]...)
}

func (q *JobQueue) notify(job *Job) {
	if q.observer != nil {
		q.observer.JobChanged(job.Snapshot())
	}
}
