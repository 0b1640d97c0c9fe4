package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type task struct {
	name string
	fn   func(context.Context)
}

// Dispatcher runs notification side effects on background workers so a slow
// email or membership lookup can never block the broadcast path. Enqueue is
// non-blocking: on overflow the task is dropped and logged (at-most-once,
// best-effort delivery for this class of work).
type Dispatcher struct {
	tasks   chan task
	workers int
	timeout time.Duration
}

func NewDispatcher(workers, queueSize int, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		tasks:   make(chan task, queueSize),
		workers: workers,
		timeout: timeout,
	}
}

// Run blocks until ctx is done, draining the queue with the configured
// number of workers.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case t := <-d.tasks:
					d.run(ctx, t)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()
	return nil
}

func (d *Dispatcher) run(ctx context.Context, t task) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("notification task panicked", "task", t.name, "panic", rec)
		}
	}()

	tctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	t.fn(tctx)
}

// Enqueue hands off a task without blocking the caller.
func (d *Dispatcher) Enqueue(name string, fn func(context.Context)) bool {
	select {
	case d.tasks <- task{name: name, fn: fn}:
		return true
	default:
		slog.Warn("notification queue full, task dropped", "task", name)
		return false
	}
}
