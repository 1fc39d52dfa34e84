package statusline

// Recorder observes coordinator activity for instrumentation. All methods
// may be called from the worker goroutine or from callers submitting jobs
// and must be safe for concurrent use. The metrics package provides a
// prometheus-backed implementation.
type Recorder interface {
	// RenderCompleted is called after every render job; wrote is false when
	// the diff against the cached line suppressed the write.
	RenderCompleted(wrote bool)

	// LinePrinted is called for each full line scrolled above the status row.
	LinePrinted()

	// NotificationRaised is called whenever a notification is installed.
	NotificationRaised(sev Severity)

	// QueueDepth observes the worker queue length after each append and pop.
	QueueDepth(n int)
}

type nopRecorder struct{}

func (nopRecorder) RenderCompleted(bool)        {}
func (nopRecorder) LinePrinted()                {}
func (nopRecorder) NotificationRaised(Severity) {}
func (nopRecorder) QueueDepth(int)              {}
