// Package statusline renders a single, continuously overwritten terminal
// status line while arbitrary goroutines report progress, post transient
// notifications, and emit ordinary log output.
//
// The line has the shape
//
//	H:MM:SS | count[/total] | label
//
// where the label is resolved by priority: an unexpired notification wins
// over the persistent status message, which wins over the currently tracked
// work item. Absent all three the label segment is omitted.
//
// # Architecture
//
// All terminal writes funnel through a single worker goroutine draining a
// FIFO queue. Callers never touch the sink themselves; public operations
// mutate the small shared state synchronously and enqueue a repaint, so
// output from any number of goroutines is totally ordered and never
// interleaved mid-line. Every operation returns a *Future; ignoring it gives
// fire-and-forget semantics, waiting on it gives the synchronous form.
//
//	status := statusline.New()
//	defer status.Close()
//
//	status.AddWork("photos/img_0001.jpg")
//	status.IncrementCount()
//	status.Notify(statusline.SeverityWarn, "disk space low", 0)
//	status.PrintLine("copied photos/img_0001.jpg")
//	status.RemoveWork("photos/img_0001.jpg")
//
// # Notifications
//
// At most one notification exists at a time; setting a new one replaces any
// existing one. Expiry is lazy: the slot is cleared by the first label read
// that happens at or after the expiry instant. No background timer repaints
// the line purely because time passed, so an expired notification can stay
// visible until the next render-triggering operation.
//
// # Shutdown
//
// Close enqueues a final clear, stops intake, and drains the queue in two
// bounded phases. Jobs submitted before Close complete; jobs submitted after
// Close fail immediately with ErrClosed. Close is idempotent.
package statusline
