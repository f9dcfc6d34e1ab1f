// Package task runs side effects of a request (propagation, notification
// dispatch) in the background, on a context owned by the server instead of
// the request.
package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/dongsplit/internal/metrics"
)

var (
	ErrQueueFull = errors.New("task queue is full")
	ErrStopped   = errors.New("task runner is stopped")
)

// Func is the body of a task
type Func func(ctx context.Context) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

type job struct {
	id   string
	name string
	fn   Func
}

// Runner executes scheduled tasks on a fixed pool of workers
type Runner struct {
	queue       chan job
	workers     int
	maxAttempts int
	backoff     time.Duration

	mu      sync.RWMutex
	stopped bool

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewRunner creates a runner with the given pool and queue sizes
func NewRunner(workers, queueSize, maxAttempts int, backoff time.Duration) *Runner {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Runner{
		queue:       make(chan job, queueSize),
		workers:     workers,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Start launches the workers. Tasks run on a context derived from ctx.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for j := range r.queue {
				r.run(ctx, j)
			}
		}()
	}
	slog.Info("task runner started", "workers", r.workers, "queue", cap(r.queue))
}

// Schedule enqueues fn without blocking
func (r *Runner) Schedule(name string, fn Func) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		return ErrStopped
	}

	j := job{id: uuid.NewString(), name: name, fn: fn}
	select {
	case r.queue <- j:
		return nil
	default:
		metrics.Tasks.WithLabelValues(name, "dropped").Inc()
		slog.Error("task dropped", "task", name, "task_id", j.id, "error", ErrQueueFull)
		return ErrQueueFull
	}
}

// Stop refuses new tasks and waits for queued ones to finish. If ctx expires
// first the remaining tasks are cancelled.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	close(r.queue)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		slog.Info("task runner drained")
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		return ctx.Err()
	}
}

func (r *Runner) run(ctx context.Context, j job) {
	for attempt := 1; ; attempt++ {
		err := j.fn(ctx)
		if err == nil {
			metrics.Tasks.WithLabelValues(j.name, "succeeded").Inc()
			return
		}

		log := slog.With("task", j.name, "task_id", j.id, "attempt", attempt, "error", err)
		if IsPermanent(err) || attempt >= r.maxAttempts || ctx.Err() != nil {
			metrics.Tasks.WithLabelValues(j.name, "failed").Inc()
			log.Error("task failed")
			return
		}

		metrics.Tasks.WithLabelValues(j.name, "retried").Inc()
		log.Warn("task failed, retrying")

		select {
		case <-ctx.Done():
			metrics.Tasks.WithLabelValues(j.name, "failed").Inc()
			log.Error("task abandoned on shutdown")
			return
		case <-time.After(r.backoff * time.Duration(attempt)):
		}
	}
}
