package statusline

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrClosed rejects jobs submitted after Close began.
	ErrClosed = errors.New("statusline: closed")

	// ErrShutdown fails jobs that were still queued when the drain phase
	// timed out and Close force-cancelled the queue.
	ErrShutdown = errors.New("statusline: job cancelled during shutdown")

	// ErrShutdownTimeout is returned by Close when the worker did not stop
	// within either bounded wait phase.
	ErrShutdownTimeout = errors.New("statusline: worker did not stop in time")
)

type task struct {
	fn  func() (string, error)
	fut *Future
}

// worker drains a strictly FIFO queue of terminal jobs on one goroutine,
// the only goroutine that ever writes to the sink. Submission never blocks:
// the queue is unbounded and producers only take the lock long enough to
// append.
type worker struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*task
	closing bool

	stopped chan struct{}

	// onDepth, if set, observes the queue length after every append and
	// every pop. Called with the lock held; must not block.
	onDepth func(int)
}

func newWorker(onDepth func(int)) *worker {
	w := &worker{
		stopped: make(chan struct{}),
		onDepth: onDepth,
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// submit enqueues fn and returns its future. After closeIntake the job is
// rejected with an already-failed future instead.
func (w *worker) submit(fn func() (string, error)) *Future {
	fut := newFuture()
	w.mu.Lock()
	if w.closing {
		w.mu.Unlock()
		fut.complete("", ErrClosed)
		return fut
	}
	w.push(&task{fn: fn, fut: fut})
	w.mu.Unlock()
	return fut
}

// closeIntake atomically stops accepting jobs and enqueues one final job.
// Doing both under one lock leaves no window in which the run loop could
// observe an empty queue and exit before the final job lands.
func (w *worker) closeIntake(final func() (string, error)) *Future {
	fut := newFuture()
	w.mu.Lock()
	if w.closing {
		w.mu.Unlock()
		fut.complete("", ErrClosed)
		return fut
	}
	w.closing = true
	w.push(&task{fn: final, fut: fut})
	w.mu.Unlock()
	return fut
}

// push appends under the caller's lock and wakes the run loop.
func (w *worker) push(t *task) {
	w.queue = append(w.queue, t)
	if w.onDepth != nil {
		w.onDepth(len(w.queue))
	}
	w.cond.Signal()
}

// awaitStop waits for the run loop to exit: up to drain for an orderly
// queue drain, then after force-cancelling whatever is still queued, up to
// cancel more. An in-progress job is never interrupted; if it outlives both
// phases, ErrShutdownTimeout is returned.
func (w *worker) awaitStop(drain, cancel time.Duration) error {
	select {
	case <-w.stopped:
		return nil
	case <-time.After(drain):
	}

	w.cancelPending()

	select {
	case <-w.stopped:
		return nil
	case <-time.After(cancel):
		return ErrShutdownTimeout
	}
}

// cancelPending fails every queued-but-not-started job with ErrShutdown.
func (w *worker) cancelPending() {
	w.mu.Lock()
	pending := w.queue
	w.queue = nil
	if w.onDepth != nil {
		w.onDepth(0)
	}
	w.cond.Broadcast()
	w.mu.Unlock()

	for _, t := range pending {
		t.fut.complete("", ErrShutdown)
	}
}

func (w *worker) run() {
	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closing {
			w.cond.Wait()
		}
		if len(w.queue) == 0 {
			// closing and drained
			w.mu.Unlock()
			close(w.stopped)
			return
		}
		t := w.queue[0]
		w.queue = w.queue[1:]
		if w.onDepth != nil {
			w.onDepth(len(w.queue))
		}
		w.mu.Unlock()

		text, err := t.fn()
		t.fut.complete(text, err)
	}
}
