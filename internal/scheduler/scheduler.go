package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Task is a unit of deferred work. A returned error is reported by the loop
// rather than swallowed.
type Task func() error

// Scheduler defers tasks to a later tick.
type Scheduler interface {
	Schedule(task Task)
}

// Loop is the reference Scheduler: a single FIFO task queue drained by
// whichever goroutine calls RunPending or Run.
type Loop struct {
	mu      sync.Mutex
	queue   []Task
	wake    chan struct{}
	logger  *slog.Logger
	onError func(error)
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for debug output and default error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithErrorHandler sets the handler that receives task errors while Run is active.
func WithErrorHandler(fn func(error)) Option {
	return func(l *Loop) {
		l.onError = fn
	}
}

// New creates an empty loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.onError == nil {
		l.onError = func(err error) {
			l.logger.Error("Unhandled task error.", "error", err)
		}
	}
	return l
}

// Schedule implements the Scheduler interface.
func (l *Loop) Schedule(task Task) {
	if task == nil {
		panic("scheduler: nil task")
	}
	l.mu.Lock()
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// RunPending runs tasks until the queue is empty and returns all task errors joined.
func (l *Loop) RunPending() error {
	var errs []error
	for {
		task, ok := l.next()
		if !ok {
			break
		}
		if err := l.runTask(task); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run drains tasks as they are scheduled until ctx is done. Task errors are
// passed to the loop's error handler and do not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("Task loop started.")
	for {
		for {
			task, ok := l.next()
			if !ok {
				break
			}
			if err := l.runTask(task); err != nil {
				l.onError(err)
			}
			if ctx.Err() != nil {
				break
			}
		}

		select {
		case <-ctx.Done():
			l.logger.Debug("Task loop stopped.", "pending", l.Pending())
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) runTask(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = fmt.Errorf("task panicked: %w", rErr)
				return
			}
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task()
}
