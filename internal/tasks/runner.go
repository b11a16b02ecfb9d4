// Package tasks runs fire-and-forget background work: embedding writes,
// auto-tagging, badge evaluation and summary refreshes triggered by
// request handlers.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultTaskTimeout = 30 * time.Second

// Runner executes submitted functions on their own goroutines with a
// bounded per-task context. Close drains in-flight tasks.
type Runner struct {
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout overrides the per-task deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRunner creates a task runner.
func NewRunner(logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:  logger,
		timeout: defaultTaskTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit schedules fn on its own goroutine. Returns false when the
// runner is already closed. Panics and errors are logged, never
// propagated; background work must not take a request down with it.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("background task panicked",
					zap.String("task", name),
					zap.Any("panic", rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.Warn("background task failed",
				zap.String("task", name),
				zap.Error(err))
		}
	}()

	return true
}

// Close stops accepting tasks and waits for in-flight ones to finish.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}
