package statusline

// Future represents the eventual completion of one queued terminal job.
// Ignoring the future gives fire-and-forget semantics; Wait gives the
// synchronous form of the operation that produced it.
type Future struct {
	done chan struct{}
	text string
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// completedFuture returns a future that is already done. Used for
// operations that change nothing and therefore enqueue nothing.
func completedFuture(text string, err error) *Future {
	f := newFuture()
	f.complete(text, err)
	return f
}

// complete must be called exactly once, by the worker goroutine or by the
// submitter rejecting the job.
func (f *Future) complete(text string, err error) {
	f.text = text
	f.err = err
	close(f.done)
}

// Done returns a channel closed when the job has finished or been rejected.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job finishes and returns its error, if any.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

// Err returns the job's error without blocking. It returns nil while the
// job is still pending.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Text blocks until the job finishes and returns the line it rendered.
// Jobs that do not repaint the status row return an empty string.
func (f *Future) Text() string {
	<-f.done
	return f.text
}
