package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the lifecycle state of a tracked job.
type Status string

const (
	StatusQueued    Status = "QUEUED"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Record is the observable state of a job.
type Record struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Status    Status      `json:"status"`
	Attempt   int         `json:"attempt"`
	Error     string      `json:"error,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Enqueued  time.Time   `json:"enqueued_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Finished reports whether the job reached a terminal state.
func (r Record) Finished() bool {
	return r.Status == StatusSucceeded || r.Status == StatusFailed
}

// Handler processes a job and returns its result.
type Handler func(context.Context, Job) (interface{}, error)

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	// MaxRetries is the number of re-runs after the first failure. Zero disables retries.
	MaxRetries int
	RetryDelay time.Duration
	// RecordTTL bounds how long finished records stay queryable.
	RecordTTL time.Duration
	Logger    *zap.Logger
}

// Queue is a lightweight in-memory job dispatcher backed by goroutines.
type Queue struct {
	name    string
	handler Handler

	workers    int
	bufferSize int
	maxRetries int
	retryDelay time.Duration
	recordTTL  time.Duration
	logger     *zap.Logger
	now        func() time.Time

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	records map[string]*Record
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.RecordTTL <= 0 {
		cfg.RecordTTL = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		recordTTL:  cfg.RecordTTL,
		logger:     cfg.Logger,
		now:        func() time.Time { return time.Now().UTC() },
		jobs:       make(chan Job, cfg.BufferSize),
		records:    make(map[string]*Record),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a job onto the queue and starts tracking it.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = q.now()
	}
	q.track(job, StatusQueued, nil, nil)

	select {
	case <-ctx.Done():
		q.track(job, StatusFailed, nil, ctx.Err())
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	}
}

// Lookup returns a copy of the job's record.
func (q *Queue) Lookup(id string) (Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	rec, ok := q.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

func (q *Queue) track(job Job, status Status, result interface{}, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.pruneLocked(now)
	rec, ok := q.records[job.ID]
	if !ok {
		rec = &Record{ID: job.ID, Type: job.Type, Enqueued: job.Enqueued}
		q.records[job.ID] = rec
	}
	rec.Status = status
	rec.Attempt = job.Attempt
	rec.UpdatedAt = now
	if result != nil {
		rec.Result = result
	}
	rec.Error = ""
	if err != nil {
		rec.Error = err.Error()
	}
}

func (q *Queue) pruneLocked(now time.Time) {
	for id, rec := range q.records {
		if rec.Finished() && now.Sub(rec.UpdatedAt) > q.recordTTL {
			delete(q.records, id)
		}
	}
}

func (q *Queue) worker(workerID int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.track(job, StatusRunning, nil, nil)
			result, err := q.handler(q.ctx, job)
			if err != nil {
				q.handleFailure(job, err)
				continue
			}
			q.track(job, StatusSucceeded, result, nil)
			q.logger.Sugar().Debugw("job completed", "queue", q.name, "job_id", job.ID, "type", job.Type, "worker", workerID)
		}
	}
}

func (q *Queue) handleFailure(job Job, err error) {
	if job.Attempt >= q.maxRetries {
		q.track(job, StatusFailed, nil, err)
		q.logger.Sugar().Errorw("job failed", "queue", q.name, "job_id", job.ID, "type", job.Type, "attempt", job.Attempt, "error", err)
		return
	}
	job.Attempt++
	q.track(job, StatusQueued, nil, err)
	q.logger.Sugar().Warnw("job failed, retrying", "queue", q.name, "job_id", job.ID, "type", job.Type, "attempt", job.Attempt, "error", err)

	go func(j Job) {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.track(j, StatusFailed, nil, q.ctx.Err())
			return
		case <-timer.C:
			if err := q.Enqueue(j); err != nil {
				q.logger.Sugar().Errorw("failed to requeue job", "queue", q.name, "job_id", j.ID, "error", err)
			}
		}
	}(job)
}
